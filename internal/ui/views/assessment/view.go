package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	sessiondto "vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	"vocabhub/internal/ui/components"
	"vocabhub/internal/ui/theme"
)

const Source = "assessment"

// Model is the Assessment tab: one word at a time, recognised or not, then
// the definition and examples before moving on.
type Model struct {
	host     sessionin.AssessmentHost
	feed     *components.Feed
	opts     sessiondto.AssessmentStartInput
	view     sessiondto.View
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	started  bool
	width    int
	height   int
}

func New(host sessionin.AssessmentHost, opts sessiondto.AssessmentStartInput) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		host:     host,
		feed:     components.NewFeed(Source, host),
		opts:     opts,
		view:     host.View(),
		spinner:  sp,
		renderer: r,
	}
}

// Init mounts the host but waits for the learner before loading; an
// assessment is a deliberate action.
func (m Model) Init() tea.Cmd {
	host := m.host
	return tea.Batch(m.feed.Wait(), m.spinner.Tick, func() tea.Msg {
		if err := host.Mount(context.Background()); err != nil {
			return components.StatusMsg{Text: "saved words unavailable: " + err.Error()}
		}
		return nil
	})
}

func (m *Model) Start(opts *sessiondto.AssessmentStartInput) tea.Cmd {
	if opts != nil {
		m.opts = *opts
	}
	m.started = true
	in := m.opts
	return m.run(func(ctx context.Context) error { return m.host.Start(ctx, in) })
}

// Current is the item on screen, if any.
func (m Model) Current() *sessiondto.ItemView {
	return m.view.Item
}

func (m Model) Abandon() tea.Cmd {
	return m.run(m.host.Abandon)
}

func (m Model) Close() {
	m.feed.Stop()
	m.host.Unmount()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(max(m.width-6, 20)),
		); err == nil {
			m.renderer = r
		}

	case components.HostChangedMsg:
		if msg.Source != Source {
			return m, nil
		}
		m.view = m.host.View()
		return m, m.feed.Wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		return m, m.run(func(ctx context.Context) error { return m.host.Answer(ctx, true) })
	case "n":
		return m, m.run(func(ctx context.Context) error { return m.host.Answer(ctx, false) })
	case "enter", " ":
		if m.view.Phase == "review" {
			m.host.Next()
		} else if m.view.Item == nil && m.view.Status != "loading" {
			return m, m.Start(nil)
		}
	case "s":
		return m, m.run(m.host.ToggleSaved)
	case "p":
		return m, m.run(m.host.Pronounce)
	case "x":
		return m, m.Abandon()
	case "r":
		if m.view.Status == "failed" {
			return m, m.run(m.host.Retry)
		}
	}
	return m, nil
}

func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return components.StatusMsg{Text: "assessment: " + err.Error()}
		}
		return nil
	}
}

func (m Model) View() string {
	v := m.view
	header := components.SessionHeader("Assessment", v) + "\n"
	footer := m.renderHints()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	switch {
	case v.Status == "loading":
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+v.Copy)
	case !m.started && v.Item == nil:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center,
			theme.Title.Render("Estimate your vocabulary")+"\n"+
				theme.Muted.Render("Mark each word you recognise. enter: begin"))
	case v.Result != nil:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.renderResult())
	case v.Item == nil:
		hint := "enter: start again"
		if v.Status == "failed" {
			hint = "r: retry"
		}
		body = components.Headline(v, m.width, bodyH, hint)
	default:
		body = lipgloss.NewStyle().Height(bodyH).Render(m.renderCard())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderResult() string {
	r := m.view.Result
	return theme.Title.Render(m.view.Title) + "\n\n" +
		theme.Hot.Render(fmt.Sprintf("~%d words", r.EstimatedVocabulary)) + "\n" +
		theme.Muted.Render(fmt.Sprintf("recognised %d of %d", r.Recognized, r.Total)) + "\n\n" +
		theme.Muted.Render("enter: take it again")
}

func (m Model) renderCard() string {
	v := m.view
	item := v.Item
	var sb strings.Builder
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("level %d", item.Level)) + "  " + components.SavedMark(item) + "\n")
	sb.WriteString(theme.Prompt.Render(item.Prompt) + "\n")
	if v.AnswerShown {
		if item.PartOfSpeech != "" {
			sb.WriteString(theme.Muted.Render(item.PartOfSpeech) + "\n")
		}
		sb.WriteString(item.Answer + "\n")
		if examples := m.renderExamples(item.Examples); examples != "" {
			sb.WriteString(examples)
		}
	}
	if w := components.WarningLine(v); w != "" {
		sb.WriteString("\n" + w + "\n")
	}
	width := m.width - 2
	if width < 20 {
		width = 60
	}
	return theme.PaneActive.Width(width).Render(sb.String())
}

func (m Model) renderExamples(examples []string) string {
	if len(examples) == 0 {
		return ""
	}
	var md strings.Builder
	for _, ex := range examples {
		md.WriteString("- *" + strings.TrimSpace(ex) + "*\n")
	}
	if m.renderer != nil {
		if out, err := m.renderer.Render(md.String()); err == nil {
			return out
		}
	}
	return theme.Muted.Render(md.String())
}

func (m Model) renderHints() string {
	switch {
	case m.view.Phase == "review" && m.view.Item != nil:
		return theme.Muted.Render("enter: next  s: save  p: pronounce  x: end")
	case m.view.Item != nil:
		return theme.Muted.Render("y: I know it  n: I don't  s: save  p: pronounce  x: end")
	}
	return theme.Muted.Render("enter: start")
}
