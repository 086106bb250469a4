package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/csheth/polysumm/internal/qa"
	"github.com/csheth/polysumm/internal/session"
	"go.uber.org/zap"
)

// State is where the engine is within a turn.
type State int

const (
	StateIdle State = iota
	StateAwaitingAnswer
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Asker is the slice of the QA client the engine needs.
type Asker interface {
	Ask(ctx context.Context, query, documentID string, topK int) (qa.Answer, error)
	FollowUp(ctx context.Context, query, documentID string) (qa.FollowUps, error)
}

// Options configures an Engine.
type Options struct {
	Client       Asker
	Conversation *Conversation
	Cadence      Cadence
	TopK         int
	// Instant skips the typing animation and shows answers whole.
	Instant bool
	Logger  *zap.Logger
}

// Request is an ask call produced by Submit.
type Request struct {
	Turn       uint64
	Query      string
	DocumentID string
	TopK       int
}

// Result is the outcome of Fetch, handed back to Resolve.
type Result struct {
	Turn   uint64
	Query  string
	Answer qa.Answer
	Err    error
}

// SuggestionRequest is a follow-up call produced by RequestSuggestions.
type SuggestionRequest struct {
	Seq        uint64
	Query      string
	DocumentID string
}

// SuggestionResult is the outcome of FetchSuggestions.
type SuggestionResult struct {
	Seq       uint64
	Questions []string
	Err       error
}

// Engine runs one turn at a time: Submit appends the user message and a
// loading placeholder, Fetch performs the network call outside the lock,
// Resolve turns the result into either a typing animation or an error
// message, and Advance steps the animation. Every method except Fetch and
// FetchSuggestions is serialized.
type Engine struct {
	mu      sync.Mutex
	client  Asker
	conv    *Conversation
	typer   *Typer
	topK    int
	instant bool
	logger  *zap.Logger

	state         State
	turn          uint64
	placeholderID string
	pendingQuery  string

	documentID string
	summary    string

	lastQuery   string
	suggestions []string
	suggestSeq  uint64
	lastErr     *TurnError
}

// NewEngine builds an engine over opts.Conversation.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	conv := opts.Conversation
	cadence := opts.Cadence
	if cadence == (Cadence{}) {
		cadence = DefaultCadence()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = qa.DefaultTopK
	}
	return &Engine{
		client:     opts.Client,
		conv:       conv,
		typer:      NewTyper(conv, cadence),
		topK:       topK,
		instant:    opts.Instant,
		logger:     logger,
		documentID: conv.DocumentID(),
	}
}

// Open points the engine at documentID. A stored conversation for the same
// document is kept; otherwise the log is reseeded with summary.
func (e *Engine) Open(documentID, summary string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandonTurn()
	e.documentID = documentID
	e.summary = summary
	e.clearSuggestions()
	if e.conv.DocumentID() == documentID && e.conv.Len() > 0 {
		e.conv.EnsureSeed(summary)
		return
	}
	e.conv.Reset(documentID, summary)
	e.logger.Debug("conversation opened", zap.String("document_id", documentID))
}

// Load starts a fresh conversation for documentID regardless of what is stored.
func (e *Engine) Load(documentID, summary string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandonTurn()
	e.documentID = documentID
	e.summary = summary
	e.lastQuery = ""
	e.lastErr = nil
	e.clearSuggestions()
	e.conv.Reset(documentID, summary)
	e.logger.Debug("conversation loaded", zap.String("document_id", documentID))
}

// Submit starts a turn. It rejects blank text and any call made while a turn
// is in flight.
func (e *Engine) Submit(text string) (Request, bool) {
	req, err := e.submit(text)
	return req, err == nil
}

func (e *Engine) submit(text string) (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	query := strings.TrimSpace(text)
	if query == "" {
		return Request{}, ErrEmptyInput
	}
	if e.state != StateIdle {
		return Request{}, ErrBusy
	}

	e.conv.Append(newMessage(RoleUser, query))
	e.clearSuggestions()
	placeholder := newMessage(RoleBot, "")
	placeholder.IsLoading = true
	placeholder.IsComplete = false
	placeholder = e.conv.Append(placeholder)

	e.turn++
	e.placeholderID = placeholder.ID
	e.pendingQuery = query
	e.lastErr = nil
	e.setState(StateAwaitingAnswer)

	return Request{Turn: e.turn, Query: query, DocumentID: e.documentID, TopK: e.topK}, nil
}

// Fetch performs the ask call for req. It does not touch engine state.
func (e *Engine) Fetch(ctx context.Context, req Request) Result {
	answer, err := e.client.Ask(ctx, req.Query, req.DocumentID, req.TopK)
	return Result{Turn: req.Turn, Query: req.Query, Answer: answer, Err: err}
}

// Resolve applies a fetch result. On success it returns the first typing tick
// when an animation is needed. applied is false for results of abandoned
// turns, which are ignored.
func (e *Engine) Resolve(res Result) (tick Tick, typing bool, applied bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingAnswer || res.Turn != e.turn {
		e.logger.Debug("dropping stale answer", zap.Uint64("turn", res.Turn), zap.Uint64("current", e.turn))
		return Tick{}, false, false
	}

	if res.Err != nil {
		e.conv.Remove(e.placeholderID)
		e.lastErr = newTurnError(res.Err, res.Query)
		failed := newMessage(RoleBot, e.lastErr.Message)
		failed.IsError = true
		e.conv.Append(failed)
		e.placeholderID = ""
		e.logger.Warn("turn failed",
			zap.String("kind", string(e.lastErr.Kind)),
			zap.String("document_id", e.documentID),
			zap.Error(res.Err),
		)
		e.setState(StateIdle)
		return Tick{}, false, true
	}

	e.lastQuery = res.Query
	target := e.placeholderID
	e.placeholderID = ""
	if e.instant {
		content := res.Answer.Answer
		e.conv.Update(target, func(m *Message) {
			m.Content = content
			m.IsLoading = false
			m.IsComplete = true
			m.ShowCursor = false
		})
		e.setState(StateIdle)
		return Tick{}, false, true
	}
	first, ok := e.typer.Start(res.Answer.Answer, target)
	if !ok {
		e.setState(StateIdle)
		return Tick{}, false, true
	}
	e.setState(StateStreaming)
	return first, true, true
}

// Advance performs one typing step for tick and returns the next one.
func (e *Engine) Advance(tick Tick) (Tick, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateStreaming {
		return Tick{}, false
	}
	next, status := e.typer.Step(tick.Generation)
	switch status {
	case StepContinue:
		return next, true
	case StepDone:
		e.setState(StateIdle)
	}
	return Tick{}, false
}

// Clear cancels any running animation, drops in-flight results and reseeds
// the conversation with the summary banner. Calling it twice has the same
// effect as calling it once.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typer.Cancel()
	e.turn++
	e.placeholderID = ""
	e.pendingQuery = ""
	e.lastErr = nil
	e.clearSuggestions()
	e.setState(StateIdle)
	if !e.conv.seededOnly(e.summary) || e.conv.DocumentID() != e.documentID {
		e.conv.Reset(e.documentID, e.summary)
	}
}

// Stop is called when the conversation view goes away. No typing step fires
// afterwards, and a turn still awaiting its answer is closed with an error
// message.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandonTurn()
}

func (e *Engine) abandonTurn() {
	e.typer.Cancel()
	if e.state == StateAwaitingAnswer && e.placeholderID != "" {
		e.conv.Update(e.placeholderID, func(m *Message) {
			m.Content = interruptedText
			m.IsLoading = false
			m.IsComplete = true
			m.IsError = true
		})
	}
	e.turn++
	e.placeholderID = ""
	e.pendingQuery = ""
	e.setState(StateIdle)
}

// FinishTyping reveals the rest of the current answer immediately.
func (e *Engine) FinishTyping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateStreaming {
		return false
	}
	e.typer.Finish()
	e.setState(StateIdle)
	return true
}

// RequestSuggestions prepares a follow-up call for the last answered question.
// Any earlier request still in flight becomes stale.
func (e *Engine) RequestSuggestions() (SuggestionRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return SuggestionRequest{}, false
	}
	query := e.lastQuery
	if query == "" {
		query = e.summaryQuery()
	}
	if query == "" {
		return SuggestionRequest{}, false
	}
	e.suggestSeq++
	return SuggestionRequest{Seq: e.suggestSeq, Query: query, DocumentID: e.documentID}, true
}

func (e *Engine) summaryQuery() string {
	if e.summary == "" {
		return ""
	}
	return "What are the key findings of this paper?"
}

// FetchSuggestions performs the follow-up call for req.
func (e *Engine) FetchSuggestions(ctx context.Context, req SuggestionRequest) SuggestionResult {
	out, err := e.client.FollowUp(ctx, req.Query, req.DocumentID)
	return SuggestionResult{Seq: req.Seq, Questions: out.Questions, Err: err}
}

// ApplySuggestions installs fetched suggestions. Failures are logged and
// otherwise ignored; results overtaken by a newer submit, clear or request
// are dropped.
func (e *Engine) ApplySuggestions(res SuggestionResult) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if res.Seq != e.suggestSeq {
		return false
	}
	if res.Err != nil {
		e.logger.Warn("suggested questions unavailable", zap.Error(res.Err))
		return false
	}
	e.suggestions = sanitizeQuestions(res.Questions)
	return len(e.suggestions) > 0
}

func sanitizeQuestions(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

func (e *Engine) clearSuggestions() {
	e.suggestions = nil
	e.suggestSeq++
}

func (e *Engine) setState(next State) {
	if e.state == next {
		return
	}
	e.logger.Debug("engine state", zap.Stringer("from", e.state), zap.Stringer("to", next))
	e.state = next
}

// Messages returns a copy of the conversation.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conv.Messages()
}

// Suggestions returns the current suggested questions.
func (e *Engine) Suggestions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.suggestions...)
}

// State reports the current turn state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether a turn is in flight.
func (e *Engine) Busy() bool {
	return e.State() != StateIdle
}

// LastError returns the most recent turn failure, cleared by the next submit.
func (e *Engine) LastError() *TurnError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// DocumentID is the document questions are scoped to.
func (e *Engine) DocumentID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentID
}

// Summary is the banner text for the open document.
func (e *Engine) Summary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

// Transcript snapshots the conversation for archiving.
func (e *Engine) Transcript() session.Transcript {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conv.Transcript()
}
