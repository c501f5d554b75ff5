package study

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	"vocabhub/internal/ui/components"
	"vocabhub/internal/ui/theme"
)

// Source tags the host notifications this view consumes.
const Source = "study"

// Model is the Study tab. It renders whatever the host reports and turns
// keys into host actions.
type Model struct {
	host    sessionin.StudyHost
	feed    *components.Feed
	opts    sessiondto.StudyStartInput
	view    sessiondto.View
	itemID  string
	input   textinput.Model
	spinner spinner.Model
	width   int
	height  int
}

func New(host sessionin.StudyHost, opts sessiondto.StudyStartInput) Model {
	ti := textinput.New()
	ti.Placeholder = "type the word"
	ti.CharLimit = 64
	ti.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		host:    host,
		feed:    components.NewFeed(Source, host),
		opts:    opts,
		view:    host.View(),
		input:   ti,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	host, opts := m.host, m.opts
	return tea.Batch(m.feed.Wait(), m.spinner.Tick, func() tea.Msg {
		ctx := context.Background()
		mountErr := host.Mount(ctx)
		if err := host.Start(ctx, opts); err != nil {
			return components.StatusMsg{Text: "study: " + err.Error()}
		}
		if mountErr != nil {
			return components.StatusMsg{Text: "saved words unavailable: " + mountErr.Error()}
		}
		return nil
	})
}

// Restart begins a fresh session, optionally with new options.
func (m *Model) Restart(opts *sessiondto.StudyStartInput) tea.Cmd {
	if opts != nil {
		m.opts = *opts
	}
	in := m.opts
	return m.run(func(ctx context.Context) error { return m.host.Start(ctx, in) })
}

// Abandon ends the session on the server.
func (m Model) Abandon() tea.Cmd {
	return m.run(m.host.Abandon)
}

// Current is the item on screen, if any.
func (m Model) Current() *sessiondto.ItemView {
	return m.view.Item
}

// Due is the number of words due for review as of the last load.
func (m Model) Due() (int, bool) {
	due, ok := m.view.Metadata["due"]
	return due, ok
}

// Capturing reports whether free typing goes to the spelling input, in which
// case global key bindings must yield.
func (m Model) Capturing() bool {
	return m.view.Status == "active" && m.view.Mode == "spelling" &&
		m.view.Phase == "answering" && m.view.Item != nil
}

// Close releases the host subscription and disposes the host.
func (m Model) Close() {
	m.feed.Stop()
	m.host.Unmount()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(msg.Width-4, 48)

	case components.HostChangedMsg:
		if msg.Source != Source {
			return m, nil
		}
		m.view = m.host.View()
		return m, tea.Batch(m.syncInput(), m.feed.Wait())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) syncInput() tea.Cmd {
	id := ""
	if m.view.Item != nil {
		id = m.view.Item.ID
	}
	if id != m.itemID {
		m.itemID = id
		m.input.SetValue(m.view.Input)
	}
	if m.Capturing() {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return m, m.run(m.host.ToggleSaved)
	case "ctrl+p":
		return m, m.run(m.host.Pronounce)
	case "ctrl+x":
		return m, m.Abandon()
	}

	if m.Capturing() {
		if msg.String() == "enter" {
			value := m.input.Value()
			return m, m.run(func(ctx context.Context) error { return m.host.Check(ctx, value) })
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.host.SetInput(m.input.Value())
		return m, cmd
	}

	switch msg.String() {
	case " ":
		if m.view.Mode == "reveal" {
			m.host.Reveal()
		}
	case "y":
		if m.view.Mode == "reveal" {
			return m, m.run(func(ctx context.Context) error { return m.host.Answer(ctx, true) })
		}
	case "n":
		if m.view.Mode == "reveal" {
			return m, m.run(func(ctx context.Context) error { return m.host.Answer(ctx, false) })
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
		if m.view.Item == nil && m.view.Status != "loading" {
			return m, m.Restart(nil)
		}
	}
	return m, nil
}

func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return components.StatusMsg{Text: "study: " + err.Error()}
		}
		return nil
	}
}

func (m Model) View() string {
	v := m.view
	header := components.SessionHeader("Study", v) + "\n"
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
	case v.Item == nil:
		hint := "r: start a new session"
		if v.Status == "failed" {
			hint = "r: retry"
		}
		body = components.Headline(v, m.width, bodyH, hint)
	default:
		body = lipgloss.NewStyle().Height(bodyH).Render(m.renderCard())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderCard() string {
	v := m.view
	item := v.Item
	var sb strings.Builder

	badge := theme.Muted.Render(item.State)
	sb.WriteString(badge + "  " + components.SavedMark(item) + "\n")
	sb.WriteString(theme.Prompt.Render(item.Prompt) + "\n")
	if v.Mode == "reveal" && (item.Phonetic != "" || item.PartOfSpeech != "") {
		sb.WriteString(theme.Muted.Render(strings.TrimSpace(item.Phonetic+"  "+item.PartOfSpeech)) + "\n")
	}

	switch v.Mode {
	case "reveal":
		if v.AnswerShown {
			sb.WriteString("\n" + item.Answer + "\n")
			if item.Example != "" {
				sb.WriteString(theme.Muted.Render("“"+item.Example+"”") + "\n")
			}
		}
	case "spelling":
		if fb := v.Feedback; fb != nil {
			if fb.Correct {
				sb.WriteString("\n" + theme.Good.Render("Correct: "+fb.Expected) + "\n")
			} else {
				sb.WriteString("\n" + theme.Bad.Render("Not quite.") + " " +
					theme.Muted.Render("You typed ") + fb.Input +
					theme.Muted.Render(", expected ") + theme.Hot.Render(fb.Expected) + "\n")
			}
		} else {
			sb.WriteString("\n" + m.input.View() + "\n")
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

func (m Model) renderHints() string {
	if m.view.Item == nil {
		return theme.Muted.Render("r: new session")
	}
	if m.view.Mode == "spelling" {
		return theme.Muted.Render("enter: check  ctrl+s: save  ctrl+p: pronounce  ctrl+x: end")
	}
	return theme.Muted.Render("space: reveal  y: knew it  n: didn't  s: save  p: pronounce  x: end")
}
