package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/csheth/polysumm/internal/kv"
	"github.com/csheth/polysumm/internal/qa"
)

type askCall struct {
	Query      string
	DocumentID string
	TopK       int
}

type fakeAsker struct {
	mu        sync.Mutex
	answer    string
	err       error
	questions []string
	followErr error
	asks      []askCall
	follows   []string
}

func (f *fakeAsker) Ask(ctx context.Context, query, documentID string, topK int) (qa.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asks = append(f.asks, askCall{Query: query, DocumentID: documentID, TopK: topK})
	if f.err != nil {
		return qa.Answer{}, f.err
	}
	return qa.Answer{Answer: f.answer, Query: query}, nil
}

func (f *fakeAsker) FollowUp(ctx context.Context, query, documentID string) (qa.FollowUps, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, query)
	if f.followErr != nil {
		return qa.FollowUps{}, f.followErr
	}
	return qa.FollowUps{Questions: f.questions}, nil
}

var testCadence = Cadence{
	Default:    time.Microsecond,
	Space:      2 * time.Microsecond,
	Comma:      3 * time.Microsecond,
	Newline:    4 * time.Microsecond,
	Terminator: 5 * time.Microsecond,
}

func newTestEngine(t *testing.T, asker *fakeAsker) (*Engine, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	conv := NewConversation(store, nil)
	engine := NewEngine(Options{Client: asker, Conversation: conv, Cadence: testCadence})
	return engine, store
}

// drain advances the animation until it finishes and returns the content
// lengths observed after each step.
func drain(t *testing.T, e *Engine, tick Tick) []int {
	t.Helper()
	var lengths []int
	ok := true
	for ok {
		tick, ok = e.Advance(tick)
		msgs := e.Messages()
		lengths = append(lengths, len([]rune(msgs[len(msgs)-1].Content)))
		if len(lengths) > 10000 {
			t.Fatal("typing never finished")
		}
	}
	return lengths
}
