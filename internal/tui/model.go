package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/session"
	"github.com/csheth/polysumm/internal/upload"
)

// Config wires the model to the running client.
type Config struct {
	Engine   *chat.Engine
	Sessions *session.Store
	Uploads  *upload.Service
	Logger   *zap.Logger
	// AutoSuggest requests follow-up questions after every answer.
	AutoSuggest bool
	// ReadFile loads the PDF named in the upload form. Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

type model struct {
	config Config
	logger *zap.Logger
	jobs   *jobBus
	layout pageLayout
	theme  session.Theme
	styles palette

	stage       stage
	pathInput   textinput.Model
	lengthInput textinput.Model
	uploadFocus uploadField
	optionIdx   int
	historyIdx  int

	composer      textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model
	suggestionIdx int
	pending       chat.Request
	streaming     bool
	processing    string

	errorMessage string
	infoMessage  string
}

// New builds the root model. A session that already has a summary opens
// straight into the conversation.
func New(cfg Config) tea.Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}

	path := textinput.New()
	path.Placeholder = pathPlaceholder
	path.Prompt = "› "
	path.CharLimit = 1024
	path.Focus()

	length := textinput.New()
	length.Placeholder = lengthPlaceholder
	length.Prompt = "› "
	length.CharLimit = 4

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.Prompt = "› "
	composer.CharLimit = 2000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	layout := newPageLayout()
	vp := viewport.New(layout.viewportWidth, layout.viewportHeight)

	m := &model{
		config:        cfg,
		logger:        logger,
		jobs:          newJobBus(logger),
		layout:        layout,
		stage:         stageUpload,
		pathInput:     path,
		lengthInput:   length,
		composer:      composer,
		viewport:      vp,
		spinner:       spin,
		suggestionIdx: -1,
	}
	m.applyTheme(session.ThemeLight)

	if cfg.Sessions != nil {
		current := cfg.Sessions.Get()
		m.applyTheme(current.Theme)
		if current.Error != "" {
			m.errorMessage = current.Error
		}
		if current.Active() && cfg.Engine != nil {
			cfg.Engine.Open(current.DocumentID, current.Summary)
			m.enterChat()
		}
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.composer.Width = m.layout.viewportWidth - 4
		m.pathInput.Width = m.layout.viewportWidth - 4
		return m, nil
	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case jobSignalMsg:
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case processResultMsg:
		return m.handleProcessResult(msg)
	case answerMsg:
		return m.handleAnswer(msg)
	case typingMsg:
		return m.handleTyping(msg)
	case suggestionsMsg:
		if m.config.Engine.ApplySuggestions(msg.result) {
			m.suggestionIdx = -1
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.stage {
		case stageUpload:
			return m.updateUpload(msg)
		case stageProcessing:
			return m, nil
		case stageChat:
			return m.updateChat(msg)
		}
	}
	return m, nil
}

func (m *model) quit() tea.Cmd {
	if m.config.Engine != nil {
		m.config.Engine.Stop()
	}
	m.jobs.Stop()
	return tea.Quit
}

func (m *model) loading() bool {
	if m.stage == stageProcessing {
		return true
	}
	return m.stage == stageChat && m.config.Engine.State() == chat.StateAwaitingAnswer
}

func (m *model) applyTheme(theme session.Theme) {
	if !theme.Valid() {
		theme = session.ThemeLight
	}
	m.theme = theme
	m.styles = newPalette(theme)
	m.spinner.Style = m.styles.cursor
}

func (m *model) toggleTheme() {
	if m.config.Sessions == nil {
		return
	}
	theme, err := m.config.Sessions.ToggleTheme()
	if err != nil {
		m.logger.Warn("toggle theme", zap.Error(err))
		m.errorMessage = fmt.Sprintf("Could not save the theme: %v", err)
	}
	m.applyTheme(theme)
}

func (m *model) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.switchUploadFocus()
		return m, nil
	case "ctrl+o":
		m.optionIdx = (m.optionIdx + 1) % len(upload.Options)
		return m, nil
	case "ctrl+t":
		m.toggleTheme()
		return m, nil
	case "up":
		if m.historyIdx > 0 {
			m.historyIdx--
		}
		return m, nil
	case "down":
		if m.historyIdx < len(m.recentDocuments())-1 {
			m.historyIdx++
		}
		return m, nil
	case "ctrl+r":
		return m, m.resumeSelected()
	case "esc":
		if m.config.Engine != nil && m.config.Engine.DocumentID() != "" && m.config.Engine.Summary() != "" {
			m.enterChat()
		}
		return m, nil
	case "enter":
		return m, m.submitUpload()
	}

	var cmd tea.Cmd
	if m.uploadFocus == fieldLength {
		m.lengthInput, cmd = m.lengthInput.Update(msg)
	} else {
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

func (m *model) switchUploadFocus() {
	if m.uploadFocus == fieldPath {
		m.uploadFocus = fieldLength
		m.pathInput.Blur()
		m.lengthInput.Focus()
		return
	}
	m.uploadFocus = fieldPath
	m.lengthInput.Blur()
	m.pathInput.Focus()
}

func (m *model) submitUpload() tea.Cmd {
	m.errorMessage = ""
	m.infoMessage = ""
	path := strings.Trim(strings.TrimSpace(m.pathInput.Value()), `"'`)
	if path == "" {
		m.errorMessage = "Please upload a PDF file."
		return nil
	}
	length, err := upload.ParseLength(m.lengthInput.Value())
	if err != nil {
		m.errorMessage = chat.Explain(err)
		return nil
	}
	data, err := m.config.ReadFile(path)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Could not read %s: %v", path, err)
		return nil
	}
	req := upload.Request{
		Filename:      filepath.Base(path),
		Data:          data,
		Option:        upload.Options[m.optionIdx].Key,
		SummaryLength: length,
	}
	if err := req.Validate(); err != nil {
		m.errorMessage = chat.Explain(err)
		return nil
	}
	m.stage = stageProcessing
	m.processing = fmt.Sprintf("Processing %s with %s…", req.Filename, req.Option.Title())
	return tea.Batch(m.jobs.Start(jobKindProcess, processJob(m.config.Uploads, req)), m.spinner.Tick)
}

func (m *model) recentDocuments() []session.HistoryEntry {
	if m.config.Sessions == nil {
		return nil
	}
	history := m.config.Sessions.Get().Info.DocumentHistory
	if len(history) > maxHistoryRows {
		history = history[:maxHistoryRows]
	}
	return history
}

func (m *model) resumeSelected() tea.Cmd {
	recent := m.recentDocuments()
	if len(recent) == 0 {
		m.infoMessage = "No earlier documents to resume."
		return nil
	}
	if m.historyIdx >= len(recent) {
		m.historyIdx = len(recent) - 1
	}
	entry := recent[m.historyIdx]
	m.errorMessage = ""
	m.stage = stageProcessing
	m.processing = fmt.Sprintf("Resuming %s…", entry.ID)
	return tea.Batch(m.jobs.Start(jobKindResume, resumeJob(m.config.Uploads, entry.ID)), m.spinner.Tick)
}

func (m *model) handleProcessResult(msg processResultMsg) (tea.Model, tea.Cmd) {
	m.processing = ""
	if msg.err != nil {
		m.stage = stageUpload
		m.errorMessage = chat.Explain(msg.err)
		return m, nil
	}
	m.errorMessage = ""
	m.pathInput.SetValue("")
	m.historyIdx = 0
	if msg.resume {
		m.infoMessage = fmt.Sprintf("Resumed %s.", msg.result.DocumentID)
	} else {
		m.infoMessage = fmt.Sprintf("Loaded %s (%d pages).", msg.result.Filename, msg.result.Pages)
	}
	m.enterChat()
	return m, nil
}

func (m *model) enterChat() {
	m.stage = stageChat
	m.streaming = false
	m.suggestionIdx = -1
	m.pathInput.Blur()
	m.lengthInput.Blur()
	m.composer.Focus()
	m.viewport.GotoBottom()
}

func (m *model) enterUpload() {
	m.config.Engine.Stop()
	m.streaming = false
	m.stage = stageUpload
	m.uploadFocus = fieldPath
	m.composer.Blur()
	m.pathInput.Focus()
	m.infoMessage = ""
}

func (m *model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	engine := m.config.Engine
	switch msg.String() {
	case "enter":
		return m, m.submitQuestion()
	case "tab":
		m.cycleSuggestion(1)
		return m, nil
	case "shift+tab":
		m.cycleSuggestion(-1)
		return m, nil
	case "ctrl+f":
		return m, m.requestSuggestions()
	case "ctrl+l":
		engine.Clear()
		m.streaming = false
		m.suggestionIdx = -1
		m.errorMessage = ""
		m.infoMessage = "Conversation cleared."
		return m, nil
	case "ctrl+s":
		if engine.FinishTyping() {
			return m, m.typingFinished()
		}
		return m, nil
	case "ctrl+x":
		if engine.Busy() {
			engine.Stop()
			m.streaming = false
		}
		return m, nil
	case "ctrl+t":
		m.toggleTheme()
		return m, nil
	case "ctrl+n":
		m.enterUpload()
		return m, nil
	case "esc":
		m.composer.SetValue("")
		m.suggestionIdx = -1
		return m, nil
	case "pgup":
		m.viewport.ViewUp()
		return m, nil
	case "pgdown":
		m.viewport.ViewDown()
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *model) submitQuestion() tea.Cmd {
	engine := m.config.Engine
	text := m.composer.Value()
	if strings.TrimSpace(text) == "" && m.suggestionIdx >= 0 {
		if suggestions := engine.Suggestions(); m.suggestionIdx < len(suggestions) {
			text = suggestions[m.suggestionIdx]
		}
	}
	req, ok := engine.Submit(text)
	if !ok {
		if engine.Busy() {
			m.infoMessage = fmt.Sprintf("Still answering %q.", previewText(m.pending.Query, 40))
		}
		return nil
	}
	m.pending = req
	m.composer.SetValue("")
	m.suggestionIdx = -1
	m.errorMessage = ""
	m.infoMessage = ""
	m.viewport.GotoBottom()
	return tea.Batch(m.jobs.Start(jobKindAnswer, answerJob(engine, req)), m.spinner.Tick)
}

func (m *model) cycleSuggestion(step int) {
	suggestions := m.config.Engine.Suggestions()
	if len(suggestions) == 0 {
		m.suggestionIdx = -1
		return
	}
	next := m.suggestionIdx + step
	if next < 0 {
		next = len(suggestions) - 1
	}
	if next >= len(suggestions) {
		next = 0
	}
	m.suggestionIdx = next
	m.composer.SetValue(suggestions[next])
	m.composer.CursorEnd()
}

func (m *model) requestSuggestions() tea.Cmd {
	req, ok := m.config.Engine.RequestSuggestions()
	if !ok {
		return nil
	}
	return m.jobs.Start(jobKindSuggest, suggestJob(m.config.Engine, req))
}

func (m *model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	tick, typing, applied := m.config.Engine.Resolve(msg.result)
	if !applied {
		return m, nil
	}
	if turnErr := m.config.Engine.LastError(); turnErr != nil {
		m.errorMessage = turnErr.Message
	}
	m.viewport.GotoBottom()
	if typing {
		m.streaming = true
		return m, typingCmd(tick)
	}
	if msg.result.Err == nil {
		return m, m.typingFinished()
	}
	return m, nil
}

func (m *model) handleTyping(msg typingMsg) (tea.Model, tea.Cmd) {
	next, more := m.config.Engine.Advance(msg.tick)
	if more {
		return m, typingCmd(next)
	}
	if !m.streaming || m.config.Engine.State() != chat.StateIdle {
		return m, nil
	}
	return m, m.typingFinished()
}

func (m *model) typingFinished() tea.Cmd {
	m.streaming = false
	m.viewport.GotoBottom()
	if !m.config.AutoSuggest {
		return nil
	}
	return m.requestSuggestions()
}
