package upload

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/csheth/polysumm/internal/qa"
	"github.com/ledongthuc/pdf"
)

// Inspection is what the client learns from a PDF before uploading it.
type Inspection struct {
	Pages int
	// Text is the plain text of the first page, when it can be extracted.
	Text string
}

// Inspect applies the upload rules to data and parses it as a PDF.
func Inspect(filename string, data []byte) (Inspection, error) {
	if err := qa.ValidateDocument(filename, data); err != nil {
		return Inspection{}, err
	}
	reader, err := openPDF(data)
	if err != nil {
		return Inspection{}, &qa.ValidationError{Field: "file", Message: fmt.Sprintf("The file could not be read as a PDF: %v", err)}
	}
	pages := reader.NumPage()
	if pages < 1 {
		return Inspection{}, &qa.ValidationError{Field: "file", Message: "The PDF has no pages."}
	}
	return Inspection{Pages: pages, Text: firstPageText(reader)}, nil
}

func openPDF(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func firstPageText(reader *pdf.Reader) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := reader.Page(1)
	if page.V.IsNull() {
		return ""
	}
	raw, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(raw)
}
