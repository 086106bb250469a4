package tui

import (
	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/upload"
)

type stage int

const (
	stageUpload stage = iota
	stageProcessing
	stageChat
)

type uploadField int

const (
	fieldPath uploadField = iota
	fieldLength
)

const heroTagline = "Summarize a paper, then ask it anything."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	maxSuggestionRows         = 3
	maxHistoryRows            = 5
)

const (
	composerPlaceholder = "Ask about the paper…"
	pathPlaceholder     = "Path to a PDF (max 20MB)…"
	lengthPlaceholder   = "Summary length in words (50-500, blank for 250)"
)

const typingCursor = "▌"

type processResultMsg struct {
	result upload.Result
	resume bool
	err    error
}

type answerMsg struct {
	result chat.Result
}

type typingMsg struct {
	tick chat.Tick
}

type suggestionsMsg struct {
	result chat.SuggestionResult
}
