package session

import "time"

const (
	// MaxHistory caps both documentHistory and the transcript archive.
	MaxHistory = 10
)

// Theme is the presentation preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of the two supported themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// HistoryEntry records one ingested document.
type HistoryEntry struct {
	ID               string    `json:"id" yaml:"id"`
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	ProcessingOption string    `json:"processingOption" yaml:"processingOption"`
}

// Info is the persisted sessionInfo record.
type Info struct {
	LastActiveTimestamp time.Time      `json:"lastActiveTimestamp" yaml:"lastActiveTimestamp"`
	DocumentCount       int            `json:"documentCount" yaml:"documentCount"`
	DocumentHistory     []HistoryEntry `json:"documentHistory" yaml:"documentHistory"`
}

// Session is a snapshot of the durable client state.
type Session struct {
	Summary          string `yaml:"summary"`
	DocumentID       string `yaml:"documentId"`
	ProcessingOption string `yaml:"processingOption"`
	Theme            Theme  `yaml:"theme"`
	Info             Info   `yaml:"sessionInfo"`
	Error            string `yaml:"sessionError,omitempty"`
}

// Active reports whether a document is loaded.
func (s Session) Active() bool {
	return s.Summary != ""
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Summary          *string
	DocumentID       *string
	ProcessingOption *string
	Theme            *Theme
	Error            *string
}

// String is a convenience for building Patch values.
func String(v string) *string { return &v }

// Transcript is an archived conversation for one document.
type Transcript struct {
	DocumentID string           `json:"documentId" yaml:"documentId"`
	CapturedAt time.Time        `json:"capturedAt" yaml:"capturedAt"`
	Messages   []TranscriptLine `json:"messages" yaml:"messages"`
}

// TranscriptLine is one archived message.
type TranscriptLine struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	IsError bool   `json:"isError,omitempty" yaml:"isError,omitempty"`
}
