package chat

import (
	"time"
)

// Cadence sets the pause after each revealed character. Terminators pause
// longest, then newlines, commas and spaces, with everything else fastest.
type Cadence struct {
	Default    time.Duration
	Space      time.Duration
	Comma      time.Duration
	Newline    time.Duration
	Terminator time.Duration
}

// DefaultCadence is the stock typing feel.
func DefaultCadence() Cadence {
	return Cadence{
		Default:    15 * time.Millisecond,
		Space:      30 * time.Millisecond,
		Comma:      90 * time.Millisecond,
		Newline:    160 * time.Millisecond,
		Terminator: 240 * time.Millisecond,
	}
}

// DelayAfter returns the pause following r.
func (c Cadence) DelayAfter(r rune) time.Duration {
	switch r {
	case '.', '!', '?':
		return c.Terminator
	case '\n':
		return c.Newline
	case ',', ';':
		return c.Comma
	case ' ', '\t':
		return c.Space
	default:
		return c.Default
	}
}

// Tick schedules the next reveal step. A tick whose Generation no longer
// matches the renderer is stale and must be dropped.
type Tick struct {
	Generation uint64
	Delay      time.Duration
}

// StepStatus is the outcome of Typer.Step.
type StepStatus int

const (
	StepContinue StepStatus = iota
	StepDone
	StepStale
)

// Typer reveals a known answer one character at a time. Each Start or Cancel
// bumps the generation, which invalidates every tick issued before it.
type Typer struct {
	conv    *Conversation
	cadence Cadence

	gen    uint64
	active bool
	target string
	full   []rune
	cursor int
}

// NewTyper returns a renderer that mutates messages in conv.
func NewTyper(conv *Conversation, cadence Cadence) *Typer {
	return &Typer{conv: conv, cadence: cadence}
}

// Start begins revealing full into the message with id target, cancelling any
// previous reveal. It reports false when there is nothing to animate.
func (t *Typer) Start(full, target string) (Tick, bool) {
	t.Cancel()
	t.gen++
	t.target = target
	t.full = []rune(full)
	t.cursor = 0

	if len(t.full) == 0 {
		t.conv.Update(target, func(m *Message) {
			m.Content = ""
			m.IsLoading = false
			m.IsComplete = true
			m.ShowCursor = false
		})
		return Tick{}, false
	}
	t.active = true
	t.conv.Update(target, func(m *Message) {
		m.Content = ""
		m.IsLoading = false
		m.IsComplete = false
		m.ShowCursor = true
	})
	return Tick{Generation: t.gen, Delay: t.cadence.Default}, true
}

// Step reveals one more character if gen is current.
func (t *Typer) Step(gen uint64) (Tick, StepStatus) {
	if !t.active || gen != t.gen {
		return Tick{}, StepStale
	}
	r := t.full[t.cursor]
	t.cursor++
	prefix := string(t.full[:t.cursor])
	done := t.cursor == len(t.full)

	found := t.conv.Update(t.target, func(m *Message) {
		m.Content = prefix
		if done {
			m.IsComplete = true
			m.ShowCursor = false
		}
	})
	if !found {
		t.active = false
		t.gen++
		return Tick{}, StepStale
	}
	if done {
		t.active = false
		return Tick{}, StepDone
	}
	return Tick{Generation: t.gen, Delay: t.cadence.DelayAfter(r)}, StepContinue
}

// Finish reveals the remainder at once.
func (t *Typer) Finish() bool {
	if !t.active {
		return false
	}
	full := string(t.full)
	t.conv.Update(t.target, func(m *Message) {
		m.Content = full
		m.IsComplete = true
		m.ShowCursor = false
	})
	t.active = false
	t.gen++
	return true
}

// Cancel stops the reveal, freezing the message at its current prefix and
// marking it complete. It reports whether a reveal was running.
func (t *Typer) Cancel() bool {
	if !t.active {
		return false
	}
	t.active = false
	t.gen++
	t.conv.Update(t.target, func(m *Message) {
		m.IsComplete = true
		m.ShowCursor = false
	})
	return true
}

// Active reports whether a reveal is in progress.
func (t *Typer) Active() bool {
	return t.active
}

// Generation is the current tick generation.
func (t *Typer) Generation() uint64 {
	return t.gen
}
