package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/upload"
)

func processJob(svc *upload.Service, req upload.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := svc.Process(ctx, req)
		return processResultMsg{result: result, err: err}, err
	}
}

func resumeJob(svc *upload.Service, documentID string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := svc.Resume(ctx, documentID)
		return processResultMsg{result: result, resume: true, err: err}, err
	}
}

func answerJob(engine *chat.Engine, req chat.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result := engine.Fetch(ctx, req)
		return answerMsg{result: result}, result.Err
	}
}

func suggestJob(engine *chat.Engine, req chat.SuggestionRequest) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result := engine.FetchSuggestions(ctx, req)
		return suggestionsMsg{result: result}, result.Err
	}
}

func typingCmd(tick chat.Tick) tea.Cmd {
	return tea.Tick(tick.Delay, func(time.Time) tea.Msg {
		return typingMsg{tick: tick}
	})
}
