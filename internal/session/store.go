// Package session persists the client's document identity, preferences and
// history across restarts.
package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/csheth/polysumm/internal/kv"
	"go.uber.org/zap"
)

// Store is the Persistent Session Store. Writes go straight to the durable
// backend so a restart right after any call observes the same values.
type Store struct {
	mu      sync.Mutex
	durable kv.Store
	tab     kv.Store
	now     func() time.Time
	logger  *zap.Logger

	state   Session
	lastErr error
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads the session from durable, applying defaults for anything missing
// or unreadable. tab holds the tab-scoped keys.
func Open(durable, tab kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		durable: durable,
		tab:     tab,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	state := Session{Theme: ThemeLight}

	if raw, ok, err := s.durable.Get(KeySummary); err != nil {
		return fmt.Errorf("load summary: %w", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &state.Summary); err != nil {
			state.Summary = raw
		}
	}
	var err error
	if state.DocumentID, err = s.raw(KeyDocumentID); err != nil {
		return err
	}
	if state.ProcessingOption, err = s.raw(KeyProcessingOption); err != nil {
		return err
	}
	theme, err := s.raw(KeyTheme)
	if err != nil {
		return err
	}
	if Theme(theme).Valid() {
		state.Theme = Theme(theme)
	} else if theme != "" {
		s.logger.Warn("ignoring invalid stored theme", zap.String("theme", theme))
	}

	raw, ok, err := s.durable.Get(KeySessionInfo)
	if err != nil {
		return fmt.Errorf("load session info: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &state.Info); err != nil {
			s.logger.Warn("resetting unreadable session info", zap.Error(err))
			state.Info = Info{}
			ok = false
		}
	}
	if len(state.Info.DocumentHistory) > MaxHistory {
		state.Info.DocumentHistory = state.Info.DocumentHistory[:MaxHistory]
	}
	if !ok {
		state.Info.LastActiveTimestamp = s.now()
		if err := s.writeJSON(KeySessionInfo, state.Info); err != nil {
			return err
		}
	}
	s.state = state
	return nil
}

func (s *Store) raw(key string) (string, error) {
	value, _, err := s.durable.Get(key)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}

// Get returns the current session.
func (s *Store) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() Session {
	out := s.state
	out.Info.DocumentHistory = append([]HistoryEntry(nil), s.state.Info.DocumentHistory...)
	return out
}

// Update merges p into the session and persists the touched keys.
func (s *Store) Update(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Theme != nil && !p.Theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, *p.Theme)
	}
	if p.Summary != nil {
		if err := s.writeSummary(*p.Summary); err != nil {
			return err
		}
		s.state.Summary = *p.Summary
	}
	if p.DocumentID != nil {
		if err := s.writeString(KeyDocumentID, *p.DocumentID); err != nil {
			return err
		}
		s.state.DocumentID = *p.DocumentID
	}
	if p.ProcessingOption != nil {
		if err := s.writeString(KeyProcessingOption, *p.ProcessingOption); err != nil {
			return err
		}
		s.state.ProcessingOption = *p.ProcessingOption
	}
	if p.Theme != nil {
		if err := s.durable.Set(KeyTheme, string(*p.Theme)); err != nil {
			return err
		}
		s.state.Theme = *p.Theme
	}
	if p.Error != nil {
		s.state.Error = *p.Error
		if *p.Error == "" {
			s.lastErr = nil
		}
	}
	return nil
}

// RecordDocument registers a freshly ingested document: it becomes the current
// document and moves to the front of the history.
func (s *Store) RecordDocument(id, processingOption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	info := s.state.Info
	info.DocumentCount++
	info.LastActiveTimestamp = now
	info.DocumentHistory = pushHistory(info.DocumentHistory, HistoryEntry{
		ID:               id,
		Timestamp:        now,
		ProcessingOption: processingOption,
	})

	if err := s.writeJSON(KeySessionInfo, info); err != nil {
		return err
	}
	if err := s.writeString(KeyDocumentID, id); err != nil {
		return err
	}
	if err := s.writeString(KeyProcessingOption, processingOption); err != nil {
		return err
	}
	s.state.Info = info
	s.state.DocumentID = id
	s.state.ProcessingOption = processingOption
	s.state.Error = ""
	s.lastErr = nil
	return nil
}

// pushHistory drops any stale entry for e.ID, prepends e and caps the result.
func pushHistory(history []HistoryEntry, e HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, MaxHistory)
	out = append(out, e)
	for _, h := range history {
		if h.ID == e.ID {
			continue
		}
		if len(out) == MaxHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

// Recover makes a previously ingested document current again. A miss records
// a NotFoundError in the session and returns false.
func (s *Store) Recover(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry *HistoryEntry
	for i := range s.state.Info.DocumentHistory {
		if s.state.Info.DocumentHistory[i].ID == id {
			entry = &s.state.Info.DocumentHistory[i]
			break
		}
	}
	if entry == nil {
		s.lastErr = &NotFoundError{DocumentID: id}
		s.state.Error = s.lastErr.Error()
		s.logger.Info("session recover miss", zap.String("document_id", id))
		return false
	}

	info := s.state.Info
	info.LastActiveTimestamp = s.now()
	option := entry.ProcessingOption
	for _, write := range []func() error{
		func() error { return s.writeString(KeyDocumentID, id) },
		func() error { return s.writeString(KeyProcessingOption, option) },
		func() error { return s.writeJSON(KeySessionInfo, info) },
	} {
		if err := write(); err != nil {
			s.lastErr = fmt.Errorf("persist recovered session: %w", err)
			s.state.Error = s.lastErr.Error()
			s.logger.Error("session recover failed", zap.String("document_id", id), zap.Error(err))
			return false
		}
	}
	s.state.DocumentID = id
	s.state.ProcessingOption = option
	s.state.Info = info
	s.state.Error = ""
	s.lastErr = nil
	return true
}

// LastError returns the typed form of the session error, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the current document and all conversation state. Document
// history and count survive so an earlier document can still be recovered.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeySummary, KeyProcessingOption, KeyDocumentID, KeyChatHistory} {
		if err := s.durable.Remove(key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	for _, key := range TabKeys {
		if err := s.tab.Remove(key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	info := s.state.Info
	info.LastActiveTimestamp = s.now()
	if err := s.writeJSON(KeySessionInfo, info); err != nil {
		return err
	}
	s.state.Summary = ""
	s.state.ProcessingOption = ""
	s.state.DocumentID = ""
	s.state.Error = ""
	s.state.Info = info
	s.lastErr = nil
	s.logger.Info("session reset", zap.Int("document_count", info.DocumentCount))
	return nil
}

// SetTheme persists t.
func (s *Store) SetTheme(t Theme) error {
	return s.Update(Patch{Theme: &t})
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme() (Theme, error) {
	next := ThemeDark
	if s.DarkMode() {
		next = ThemeLight
	}
	if err := s.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}

// DarkMode is the presentation flag derived from the theme.
func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Theme == ThemeDark
}

// SetTabValue stores a tab-scoped value; an empty value removes the key.
func (s *Store) SetTabValue(key, value string) error {
	if value == "" {
		return s.tab.Remove(key)
	}
	return s.tab.Set(key, value)
}

// TabValue reads a tab-scoped value.
func (s *Store) TabValue(key string) string {
	value, _, err := s.tab.Get(key)
	if err != nil {
		s.logger.Warn("read tab value", zap.String("key", key), zap.Error(err))
		return ""
	}
	return value
}

// ClearTab removes every tab-scoped key.
func (s *Store) ClearTab() error {
	for _, key := range TabKeys {
		if err := s.tab.Remove(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) writeSummary(summary string) error {
	if summary == "" {
		return s.durable.Remove(KeySummary)
	}
	return s.writeJSON(KeySummary, summary)
}

func (s *Store) writeString(key, value string) error {
	if value == "" {
		return s.durable.Remove(key)
	}
	return s.durable.Set(key, value)
}

func (s *Store) writeJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.durable.Set(key, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
