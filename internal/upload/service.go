package upload

import (
	"context"
	"fmt"
	"strconv"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/qa"
	"github.com/csheth/polysumm/internal/session"
	"github.com/csheth/polysumm/internal/topic"
	"go.uber.org/zap"
)

// Ingester is the slice of the QA client uploads need.
type Ingester interface {
	Ingest(ctx context.Context, doc qa.Document) (qa.Ingestion, error)
	Summarize(ctx context.Context, req qa.SummaryRequest) (qa.Summary, error)
}

// Result describes the document that became active.
type Result struct {
	DocumentID    string
	Filename      string
	Option        Option
	Summary       string
	Topic         string
	SummaryLength int
	Pages         int
	Chunks        int
}

// Service runs uploads and resumes against shared session and chat state.
type Service struct {
	client   Ingester
	sessions *session.Store
	engine   *chat.Engine
	logger   *zap.Logger
}

// NewService wires an upload service.
func NewService(client Ingester, sessions *session.Store, engine *chat.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, sessions: sessions, engine: engine, logger: logger}
}

// Process validates, inspects, ingests and summarizes req, then makes the new
// document current with a freshly seeded conversation. The previous
// conversation is archived first.
func (s *Service) Process(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	inspection, err := Inspect(req.Filename, req.Data)
	if err != nil {
		return Result{}, err
	}

	s.archive()
	if err := s.sessions.ClearTab(); err != nil {
		return Result{}, fmt.Errorf("clear conversation state: %w", err)
	}

	ingestion, err := s.client.Ingest(ctx, qa.Document{
		Filename: req.Filename,
		Data:     req.Data,
		Metadata: map[string]string{"processing_option": string(req.Option)},
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("document ingested",
		zap.String("document_id", ingestion.DocumentID),
		zap.String("filename", req.Filename),
		zap.Int("pages", inspection.Pages),
		zap.Int("chunks", ingestion.ChunksProcessed),
	)

	length := req.Length()
	summary, err := s.client.Summarize(ctx, qa.SummaryRequest{
		DocID:       ingestion.DocumentID,
		SummaryType: req.Option.SummaryType(),
		MaxLength:   length,
	})
	if err != nil {
		return Result{}, err
	}

	if err := s.sessions.RecordDocument(ingestion.DocumentID, string(req.Option)); err != nil {
		return Result{}, err
	}
	if err := s.sessions.Update(session.Patch{Summary: session.String(summary.Summary)}); err != nil {
		return Result{}, err
	}

	res := Result{
		DocumentID:    ingestion.DocumentID,
		Filename:      displayName(req.Filename, ingestion.Filename),
		Option:        req.Option,
		Summary:       summary.Summary,
		Topic:         topic.Extract(summary.Summary, inspection.Text),
		SummaryLength: length,
		Pages:         inspection.Pages,
		Chunks:        ingestion.ChunksProcessed,
	}
	s.storeTabState(res, req.SummaryLength)
	s.engine.Load(res.DocumentID, res.Summary)
	return res, nil
}

// Resume makes a document from the history current again and regenerates its
// summary. An unknown id yields a *session.NotFoundError.
func (s *Service) Resume(ctx context.Context, documentID string) (Result, error) {
	if !s.sessions.Recover(documentID) {
		if err := s.sessions.LastError(); err != nil {
			return Result{}, err
		}
		return Result{}, &session.NotFoundError{DocumentID: documentID}
	}
	current := s.sessions.Get()
	option := Option(current.ProcessingOption)
	if _, ok := LookupOption(string(option)); !ok {
		option = OptionCustomModels
	}

	length := DefaultSummaryLength
	if n, err := strconv.Atoi(s.sessions.TabValue(session.KeySummaryLength)); err == nil && n > 0 {
		length = n
	}
	summary, err := s.client.Summarize(ctx, qa.SummaryRequest{
		DocID:       documentID,
		SummaryType: option.SummaryType(),
		MaxLength:   length,
	})
	if err != nil {
		return Result{}, err
	}
	if err := s.sessions.Update(session.Patch{Summary: session.String(summary.Summary)}); err != nil {
		return Result{}, err
	}

	if s.engine.DocumentID() != documentID {
		s.archive()
	}
	res := Result{
		DocumentID:    documentID,
		Option:        option,
		Summary:       summary.Summary,
		Topic:         topic.Extract(summary.Summary, ""),
		SummaryLength: length,
	}
	if err := s.sessions.SetTabValue(session.KeyPaperTopic, res.Topic); err != nil {
		s.logger.Warn("store paper topic", zap.Error(err))
	}
	s.engine.Open(documentID, summary.Summary)
	s.logger.Info("document resumed", zap.String("document_id", documentID))
	return res, nil
}

func (s *Service) archive() {
	if err := s.sessions.ArchiveTranscript(s.engine.Transcript()); err != nil {
		s.logger.Warn("archive conversation", zap.Error(err))
	}
}

func (s *Service) storeTabState(res Result, requestedLength int) {
	values := map[string]string{
		session.KeyPaperTopic:   res.Topic,
		session.KeyUploadedFile: res.Filename,
	}
	if requestedLength > 0 {
		values[session.KeySummaryLength] = strconv.Itoa(requestedLength)
	}
	for key, value := range values {
		if err := s.sessions.SetTabValue(key, value); err != nil {
			s.logger.Warn("store tab value", zap.String("key", key), zap.Error(err))
		}
	}
}

func displayName(local, remote string) string {
	if local != "" {
		return local
	}
	return remote
}
