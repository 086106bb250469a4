package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-resty/resty/v2"
)

// MaxUploadBytes is the largest document accepted for ingestion.
const MaxUploadBytes = 20 << 20

var pdfMagic = []byte("%PDF-")

// Answer is the response to a question about a document.
type Answer struct {
	Answer  string            `json:"answer"`
	Sources []json.RawMessage `json:"sources"`
	Query   string            `json:"query"`
}

// FollowUps lists suggested next questions.
type FollowUps struct {
	Questions []string `json:"questions"`
}

// Document is a file handed to Ingest.
type Document struct {
	Filename string
	Data     []byte
	Metadata map[string]string
}

// Ingestion describes an indexed document.
type Ingestion struct {
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	Status          string `json:"status"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// SummaryRequest asks the service to summarize an ingested document.
type SummaryRequest struct {
	DocID       string `json:"doc_id"`
	SummaryType string `json:"summary_type"`
	MaxLength   int    `json:"max_length"`
}

// Summary is the generated summary for a document.
type Summary struct {
	Summary     string `json:"summary"`
	DocumentID  string `json:"document_id"`
	SummaryType string `json:"summary_type"`
	Length      int    `json:"length"`
}

type askPayload struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	DocumentID string `json:"document_id,omitempty"`
}

type followUpPayload struct {
	Query      string `json:"query"`
	DocumentID string `json:"document_id,omitempty"`
}

// Ask answers query against documentID (or the whole corpus when empty).
func (c *Client) Ask(ctx context.Context, query, documentID string, topK int) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, &ValidationError{Field: "query", Message: "Question cannot be empty."}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	var out Answer
	err := c.postJSON(ctx, "ask", pathAsk, askPayload{Query: query, TopK: topK, DocumentID: documentID}, &out)
	if err != nil {
		return Answer{}, err
	}
	return out, nil
}

// FollowUp suggests questions that build on query.
func (c *Client) FollowUp(ctx context.Context, query, documentID string) (FollowUps, error) {
	if strings.TrimSpace(query) == "" {
		return FollowUps{}, &ValidationError{Field: "query", Message: "Question cannot be empty."}
	}
	var out FollowUps
	if err := c.postJSON(ctx, "follow-up", pathFollowUp, followUpPayload{Query: query, DocumentID: documentID}, &out); err != nil {
		return FollowUps{}, err
	}
	return out, nil
}

// Summarize generates a summary of an ingested document.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (Summary, error) {
	if strings.TrimSpace(req.DocID) == "" {
		return Summary{}, &ValidationError{Field: "doc_id", Message: "A document id is required to generate a summary."}
	}
	var out Summary
	if err := c.postJSON(ctx, "summarize", pathSummarize, req, &out); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// Ingest uploads a PDF for indexing. Empty, oversized and non-PDF input is
// rejected before any request is made.
func (c *Client) Ingest(ctx context.Context, doc Document) (Ingestion, error) {
	if err := ValidateDocument(doc.Filename, doc.Data); err != nil {
		return Ingestion{}, err
	}
	name := doc.Filename
	if name == "" {
		name = "document.pdf"
	}
	var out Ingestion
	err := c.do(ctx, "ingest", pathIngest, func(req *resty.Request) {
		req.SetFileReader("file", name, bytes.NewReader(doc.Data))
		if len(doc.Metadata) > 0 {
			req.SetMultipartFormData(doc.Metadata)
		}
	}, &out)
	if err != nil {
		return Ingestion{}, rewriteIngestError(err)
	}
	return out, nil
}

// ValidateDocument applies the client-side upload rules.
func ValidateDocument(filename string, data []byte) error {
	switch {
	case len(data) == 0:
		return &ValidationError{Field: "file", Message: "No file was provided for upload. Please select a PDF file."}
	case len(data) > MaxUploadBytes:
		return &ValidationError{Field: "file", Message: "File size exceeds the maximum limit of 20MB."}
	case !bytes.HasPrefix(data, pdfMagic):
		return &ValidationError{Field: "file", Message: "Unsupported file format. Only PDF files are accepted."}
	}
	if filename != "" && !strings.EqualFold(extension(filename), ".pdf") {
		return &ValidationError{Field: "file", Message: "Unsupported file format. Only PDF files are accepted."}
	}
	return nil
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// rewriteIngestError maps the service's input rejections onto ValidationError
// so callers can show a precise remediation.
func rewriteIngestError(err error) error {
	var svc *ServiceError
	if !errors.As(err, &svc) || svc.Status >= 500 {
		return err
	}
	switch {
	case strings.Contains(svc.Body, "No file provided"):
		return &ValidationError{Field: "file", Message: "No file was provided for upload. Please select a PDF file."}
	case strings.Contains(svc.Body, "Unsupported file format"):
		return &ValidationError{Field: "file", Message: "Unsupported file format. Only PDF files are accepted."}
	case strings.Contains(svc.Body, "File size exceeds"):
		return &ValidationError{Field: "file", Message: "File size exceeds the maximum limit of 20MB."}
	}
	return err
}
