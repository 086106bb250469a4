package upload

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/csheth/polysumm/internal/qa"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultSummaryLength = 250
	MinSummaryLength     = 50
	MaxSummaryLength     = 500
)

// Request is a document the user wants processed.
type Request struct {
	Filename      string `json:"filename"`
	Data          []byte `json:"file"`
	Option        Option `json:"option"`
	SummaryLength int    `json:"summaryLength"`
}

// Validate checks the option, the file presence and the summary length. A
// zero length means the default.
func (r Request) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Option,
			validation.Required.Error("please select a summarization option"),
			validation.In(OptionCustomModels, OptionExternalAPI).Error("unknown summarization option"),
		),
		validation.Field(&r.Data, validation.Required.Error("please upload a PDF file")),
		validation.Field(&r.SummaryLength,
			validation.Min(MinSummaryLength),
			validation.Max(MaxSummaryLength),
		),
	)
	return asValidationError(err)
}

// Length is the effective summary length.
func (r Request) Length() int {
	if r.SummaryLength == 0 {
		return DefaultSummaryLength
	}
	return r.SummaryLength
}

// ParseLength reads a user-entered length; blank means default.
func ParseLength(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &qa.ValidationError{Field: "summaryLength", Message: "summaryLength: please enter a valid number."}
	}
	return n, nil
}

// asValidationError flattens ozzo errors into a qa.ValidationError naming the
// first failing field.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &qa.ValidationError{Field: keys[0], Message: fields.Error()}
}
