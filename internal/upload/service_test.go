package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/kv"
	"github.com/csheth/polysumm/internal/qa"
	"github.com/csheth/polysumm/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	ingestErr    error
	summarizeErr error
	docs         []qa.Document
	summaries    []qa.SummaryRequest
	answer       string
}

func (f *fakeService) Ingest(ctx context.Context, doc qa.Document) (qa.Ingestion, error) {
	f.docs = append(f.docs, doc)
	if f.ingestErr != nil {
		return qa.Ingestion{}, f.ingestErr
	}
	return qa.Ingestion{DocumentID: "doc-1", Filename: doc.Filename, Status: "success", ChunksProcessed: 7}, nil
}

func (f *fakeService) Summarize(ctx context.Context, req qa.SummaryRequest) (qa.Summary, error) {
	f.summaries = append(f.summaries, req)
	if f.summarizeErr != nil {
		return qa.Summary{}, f.summarizeErr
	}
	return qa.Summary{Summary: "This paper proposes sparse attention for long documents.", DocumentID: req.DocID}, nil
}

func (f *fakeService) Ask(ctx context.Context, query, documentID string, topK int) (qa.Answer, error) {
	return qa.Answer{Answer: f.answer}, nil
}

func (f *fakeService) FollowUp(ctx context.Context, query, documentID string) (qa.FollowUps, error) {
	return qa.FollowUps{}, nil
}

type fixture struct {
	svc      *Service
	fake     *fakeService
	sessions *session.Store
	engine   *chat.Engine
	tab      *kv.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	durable := kv.NewMemoryStore()
	tab := kv.NewMemoryStore()
	sessions, err := session.Open(durable, tab)
	require.NoError(t, err)
	fake := &fakeService{answer: "ok"}
	engine := chat.NewEngine(chat.Options{Client: fake, Conversation: chat.NewConversation(tab, nil), Instant: true})
	return fixture{
		svc:      NewService(fake, sessions, engine, nil),
		fake:     fake,
		sessions: sessions,
		engine:   engine,
		tab:      tab,
	}
}

func TestProcessActivatesDocument(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Process(context.Background(), Request{
		Filename:      "paper.pdf",
		Data:          buildPDF(2, "Sparse Attention"),
		Option:        OptionExternalAPI,
		SummaryLength: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", res.DocumentID)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 7, res.Chunks)
	assert.Equal(t, "sparse attention for long documents", res.Topic)

	require.Len(t, f.fake.docs, 1)
	assert.Equal(t, "external-api-full", f.fake.docs[0].Metadata["processing_option"])
	require.Len(t, f.fake.summaries, 1)
	assert.Equal(t, qa.SummaryRequest{DocID: "doc-1", SummaryType: "executive", MaxLength: 120}, f.fake.summaries[0])

	current := f.sessions.Get()
	assert.Equal(t, "doc-1", current.DocumentID)
	assert.Equal(t, res.Summary, current.Summary)
	assert.Equal(t, "external-api-full", current.ProcessingOption)
	assert.Equal(t, 1, current.Info.DocumentCount)

	assert.Equal(t, "120", f.sessions.TabValue(session.KeySummaryLength))
	assert.Equal(t, "paper.pdf", f.sessions.TabValue(session.KeyUploadedFile))
	assert.Equal(t, res.Topic, f.sessions.TabValue(session.KeyPaperTopic))

	msgs := f.engine.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, res.Summary, msgs[0].Content)
	assert.Equal(t, "doc-1", f.engine.DocumentID())
}

func TestProcessArchivesPreviousConversation(t *testing.T) {
	f := newFixture(t)
	f.engine.Open("doc-0", "Old summary")
	require.NoError(t, f.engine.Send(context.Background(), "old question", nil))

	_, err := f.svc.Process(context.Background(), Request{Filename: "p.pdf", Data: buildPDF(1, "x"), Option: OptionCustomModels})
	require.NoError(t, err)

	history, err := f.sessions.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "doc-0", history[0].DocumentID)
	assert.Equal(t, "old question", history[0].Messages[0].Content)
	assert.Equal(t, DefaultSummaryLength, f.fake.summaries[0].MaxLength)
	assert.Empty(t, f.sessions.TabValue(session.KeySummaryLength))
}

func TestProcessStopsBeforeNetworkOnInvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Process(context.Background(), Request{Filename: "p.pdf", Data: []byte("%PDF-1.4 junk"), Option: OptionCustomModels})
	assert.ErrorIs(t, err, qa.ErrValidation)

	_, err = f.svc.Process(context.Background(), Request{Filename: "p.pdf", Data: buildPDF(1, "x")})
	assert.ErrorIs(t, err, qa.ErrValidation)
	assert.Empty(t, f.fake.docs)
}

func TestProcessPropagatesServiceErrors(t *testing.T) {
	f := newFixture(t)
	f.fake.summarizeErr = &qa.ServiceError{Status: 500, Body: "model offline"}
	_, err := f.svc.Process(context.Background(), Request{Filename: "p.pdf", Data: buildPDF(1, "x"), Option: OptionCustomModels})
	var svcErr *qa.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Empty(t, f.sessions.Get().DocumentID)
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.RecordDocument("doc-7", "external-api-full"))
	require.NoError(t, f.sessions.Reset())

	res, err := f.svc.Resume(context.Background(), "doc-7")
	require.NoError(t, err)
	assert.Equal(t, OptionExternalAPI, res.Option)
	assert.Equal(t, qa.SummaryRequest{DocID: "doc-7", SummaryType: "executive", MaxLength: DefaultSummaryLength}, f.fake.summaries[0])
	assert.Equal(t, "doc-7", f.sessions.Get().DocumentID)
	assert.Equal(t, res.Summary, f.sessions.Get().Summary)
	assert.Len(t, f.engine.Messages(), 1)
}

func TestResumeUnknownDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Resume(context.Background(), "ghost")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Contains(t, f.sessions.Get().Error, "ghost")
	assert.Empty(t, f.fake.summaries)
}
