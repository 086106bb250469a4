package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/session"
	"github.com/csheth/polysumm/internal/upload"
)

func (m *model) View() string {
	switch m.stage {
	case stageUpload:
		return m.viewUpload()
	case stageProcessing:
		return m.viewProcessing()
	case stageChat:
		return m.viewChat()
	default:
		return ""
	}
}

func (m *model) heroView() string {
	title := m.styles.title.Render("PolySumm")
	theme := m.styles.helper.Render(fmt.Sprintf("theme: %s", m.theme))
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", theme)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.styles.tagline.Render(heroTagline))
}

func (m *model) viewUpload() string {
	var b strings.Builder
	b.WriteString(m.styles.section.Render("Summarization option"))
	b.WriteString("\n")
	for i, info := range upload.Options {
		marker := "  "
		line := fmt.Sprintf("%s - %s", info.Title, info.Description)
		if i == m.optionIdx {
			marker = "● "
			line = m.styles.selected.Render(info.Title) + " " + m.styles.helper.Render(info.Description)
		} else {
			line = m.styles.body.Render(line)
		}
		b.WriteString(marker + wordwrap.String(line, m.wrapWidth()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.section.Render("PDF file"))
	b.WriteString("\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.section.Render("Summary length"))
	b.WriteString("\n")
	b.WriteString(m.lengthInput.View())

	parts := []string{m.heroView(), b.String()}
	if recent := m.recentView(); recent != "" {
		parts = append(parts, recent)
	}
	parts = append(parts, m.messagesView())
	parts = append(parts, m.helpLine([][2]string{
		{"enter", "process"},
		{"tab", "next field"},
		{"ctrl+o", "option"},
		{"↑/↓ ctrl+r", "resume"},
		{"ctrl+t", "theme"},
		{"ctrl+c", "quit"},
	}))
	return joinNonEmpty(parts)
}

func (m *model) recentView() string {
	recent := m.recentDocuments()
	if len(recent) == 0 {
		return ""
	}
	rows := []string{m.styles.section.Render("Recent documents")}
	for i, entry := range recent {
		line := fmt.Sprintf("%s  %s  %s",
			entry.ID,
			upload.Option(entry.ProcessingOption).Title(),
			entry.Timestamp.Local().Format("2006-01-02 15:04"),
		)
		if i == m.historyIdx {
			rows = append(rows, m.styles.selected.Render("› "+line))
			continue
		}
		rows = append(rows, m.styles.helper.Render("  "+line))
	}
	return strings.Join(rows, "\n")
}

func (m *model) viewProcessing() string {
	status := fmt.Sprintf("%s %s", m.spinner.View(), m.processing)
	return joinNonEmpty([]string{
		m.heroView(),
		m.styles.body.Render(status),
		m.styles.helper.Render("Ingesting and summarizing can take a minute. Ctrl+C quits."),
	})
}

func (m *model) viewChat() string {
	m.viewport.SetContent(m.renderTranscript())
	if m.config.Engine.Busy() {
		m.viewport.GotoBottom()
	}
	parts := []string{m.heroView()}
	if status := m.documentLine(); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.viewport.View())
	parts = append(parts, m.messagesView())
	if suggestions := m.suggestionsView(); suggestions != "" {
		parts = append(parts, suggestions)
	}
	parts = append(parts, m.composer.View())
	parts = append(parts, m.helpLine([][2]string{
		{"enter", "ask"},
		{"tab", "suggestion"},
		{"ctrl+f", "follow-ups"},
		{"ctrl+s", "skip typing"},
		{"ctrl+x", "stop"},
		{"ctrl+l", "clear"},
		{"ctrl+n", "new paper"},
		{"ctrl+t", "theme"},
	}))
	return joinNonEmpty(parts)
}

func (m *model) documentLine() string {
	engine := m.config.Engine
	if engine.DocumentID() == "" {
		return ""
	}
	stats := []string{fmt.Sprintf("doc %s", engine.DocumentID())}
	if m.config.Sessions != nil {
		current := m.config.Sessions.Get()
		if current.ProcessingOption != "" {
			stats = append(stats, upload.Option(current.ProcessingOption).Title())
		}
		if name := m.config.Sessions.TabValue(session.KeyUploadedFile); name != "" {
			stats = append(stats, name)
		}
		if topic := m.config.Sessions.TabValue(session.KeyPaperTopic); topic != "" {
			stats = append(stats, previewText(topic, 60))
		}
	}
	stats = append(stats, engine.State().String())
	return m.styles.statusBar.Render(strings.Join(stats, "  •  "))
}

func (m *model) renderTranscript() string {
	width := m.wrapWidth()
	blocks := make([]string, 0, len(m.config.Engine.Messages()))
	for _, msg := range m.config.Engine.Messages() {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *model) renderMessage(msg chat.Message, width int) string {
	var label string
	switch msg.Role {
	case chat.RoleUser:
		label = m.styles.userLabel.Render("You")
	case chat.RoleSystem:
		label = m.styles.sysLabel.Render("Summary")
	default:
		label = m.styles.botLabel.Render("PolySumm")
	}
	if msg.IsLoading {
		return label + "\n" + indentMultiline(m.spinner.View()+" "+m.styles.helper.Render("Thinking…"), "  ")
	}

	body := wordwrap.String(msg.Content, width-2)
	switch {
	case msg.IsError:
		body = m.styles.errorText.Render(body)
	case msg.Role == chat.RoleSystem:
		body = m.styles.summaryBox.Render(wordwrap.String(msg.Content, width-6))
	default:
		body = m.styles.body.Render(body)
	}
	if msg.ShowCursor {
		body += m.styles.cursor.Render(typingCursor)
	}
	return label + "\n" + indentMultiline(body, "  ")
}

func (m *model) suggestionsView() string {
	suggestions := m.config.Engine.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}
	rows := []string{m.styles.section.Render("Suggested questions")}
	for i, question := range suggestions {
		if i >= maxSuggestionRows {
			break
		}
		line := previewText(question, m.wrapWidth()-4)
		if i == m.suggestionIdx {
			rows = append(rows, m.styles.selected.Render("› "+line))
			continue
		}
		rows = append(rows, m.styles.helper.Render("  "+line))
	}
	return strings.Join(rows, "\n")
}

func (m *model) messagesView() string {
	parts := make([]string, 0, 2)
	if m.errorMessage != "" {
		parts = append(parts, m.styles.errorBox.Render(wordwrap.String(m.errorMessage, m.wrapWidth()-4)))
	}
	if m.infoMessage != "" {
		parts = append(parts, m.styles.helper.Render(m.infoMessage))
	}
	return strings.Join(parts, "\n")
}

func (m *model) helpLine(hints [][2]string) string {
	items := make([]string, 0, len(hints))
	for _, hint := range hints {
		items = append(items, m.styles.key.Render(hint[0])+" "+m.styles.helper.Render(hint[1]))
	}
	return wordwrap.String(strings.Join(items, "  "), m.layout.viewportWidth+viewportHorizontalPadding)
}

func (m *model) wrapWidth() int {
	if m.layout.viewportWidth > 0 {
		return m.layout.viewportWidth
	}
	return 80
}
