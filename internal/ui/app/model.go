package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	membershipin "vocabhub/internal/modules/membership/port/in"
	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
	sessiondto "vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	"vocabhub/internal/ui/components"
	"vocabhub/internal/ui/theme"
	assessmentview "vocabhub/internal/ui/views/assessment"
	savedview "vocabhub/internal/ui/views/saved"
	studyview "vocabhub/internal/ui/views/study"
)

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabStudy tabID = iota
	tabAssessment
	tabSaved
	tabCount
)

var tabLabels = [tabCount]string{
	"Study", "Assessment", "Saved",
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Reveal  key.Binding
	Judge   key.Binding
	Save    key.Binding
	Say     key.Binding
	End     key.Binding
	Next    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Reveal:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "reveal")),
		Judge:   key.NewBinding(key.WithKeys("y", "n"), key.WithHelp("y/n", "know / don't know")),
		Save:    key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save word")),
		Say:     key.NewBinding(key.WithKeys("p", "ctrl+p"), key.WithHelp("p", "pronounce")),
		End:     key.NewBinding(key.WithKeys("x", "ctrl+x"), key.WithHelp("x", "end session")),
		Next:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "check / next")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reveal, k.Judge, k.Next},
		{k.Save, k.Say, k.End},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Options carries the start parameters for the first sessions.
type Options struct {
	Study      sessiondto.StudyStartInput
	Assessment sessiondto.AssessmentStartInput
}

// Model is the root Bubble Tea model. It owns tab routing, the status bar,
// the help overlay and the command palette. Each tab owns one host.
type Model struct {
	pronunciation pronunciationin.Usecase

	studyView      studyview.Model
	assessmentView assessmentview.Model
	savedView      savedview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// NewModel builds the app. labels may be nil when the backend cannot name
// word ids.
func NewModel(
	hosts sessionin.Hosts,
	membership membershipin.Usecase,
	pronunciation pronunciationin.Usecase,
	labels savedview.Labeler,
	opts Options,
) Model {
	return Model{
		pronunciation:  pronunciation,
		studyView:      studyview.New(hosts.NewStudy(), opts.Study),
		assessmentView: assessmentview.New(hosts.NewAssessment(), opts.Assessment),
		savedView:      savedview.New(membership, labels, speaker{p: pronunciation}),
		activeTab:      tabStudy,
		keys:           defaultKeys(),
		help:           help.New(),
		palette:        components.NewPalette(),
		status:         "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.studyView.Init(),
		m.assessmentView.Init(),
		m.savedView.Init(),
	)
}

// Close disposes both hosts. Call it after the program exits.
func (m Model) Close() {
	m.studyView.Close()
	m.assessmentView.Close()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.StatusMsg:
		m.status = msg.Text
		return m, nil

	case components.HostChangedMsg:
		for _, ev := range msg.Events {
			m.status = describeEvent(ev)
		}
		var cmd tea.Cmd
		switch msg.Source {
		case studyview.Source:
			m.studyView, cmd = m.studyView.Update(msg)
			m.rememberLabel(m.studyView.Current())
		case assessmentview.Source:
			m.assessmentView, cmd = m.assessmentView.Update(msg)
			m.rememberLabel(m.assessmentView.Current())
		}
		if sessionEnded(msg.Events) {
			// Saved flags may have changed during the session.
			cmd = tea.Batch(cmd, m.savedView.Reload())
		}
		return m, cmd

	case savedview.LoadedMsg, savedview.RemovedMsg:
		var cmd tea.Cmd
		m.savedView, cmd = m.savedView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the active view while it captures free typing.
		if m.subViewCapturing() {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	// Spinner ticks and keys go to the tab views; every view ignores what it
	// does not own.
	var tabCmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		switch m.activeTab {
		case tabStudy:
			m.studyView, tabCmd = m.studyView.Update(msg)
		case tabAssessment:
			m.assessmentView, tabCmd = m.assessmentView.Update(msg)
		case tabSaved:
			m.savedView, tabCmd = m.savedView.Update(msg)
		}
		cmds = append(cmds, tabCmd)
	} else {
		m.studyView, tabCmd = m.studyView.Update(msg)
		cmds = append(cmds, tabCmd)
		m.assessmentView, tabCmd = m.assessmentView.Update(msg)
		cmds = append(cmds, tabCmd)
		m.savedView, tabCmd = m.savedView.Update(msg)
		cmds = append(cmds, tabCmd)
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabStudy:
		return m.studyView.View()
	case tabAssessment:
		return m.assessmentView.View()
	case tabSaved:
		return m.savedView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "vocabhub  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if due, ok := m.studyView.Due(); ok {
		left = theme.Hot.Render(fmt.Sprintf("● %d due", due)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "study:start":
		opts := sessiondto.StudyStartInput{}
		if len(parts) >= 2 {
			opts.ModeFilter = parts[1]
		}
		if len(parts) >= 3 {
			opts.Interaction = parts[2]
		}
		m.activeTab = tabStudy
		return m, m.studyView.Restart(&opts)

	case "study:abandon":
		return m, m.studyView.Abandon()

	case "assess:start":
		opts := sessiondto.AssessmentStartInput{}
		if len(parts) >= 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				m.status = "invalid limit"
				return m, nil
			}
			opts.Limit = n
		}
		m.activeTab = tabAssessment
		return m, m.assessmentView.Start(&opts)

	case "assess:abandon":
		return m, m.assessmentView.Abandon()

	case "saved:refresh":
		m.activeTab = tabSaved
		return m, m.savedView.Reload()

	case "say":
		if len(parts) < 2 {
			m.status = "usage: say <word>"
			return m, nil
		}
		label := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		return m, m.sayCmd(label)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturing reports whether the active tab takes free text, in which
// case global key bindings must yield.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabStudy:
		return m.studyView.Capturing()
	case tabSaved:
		return m.savedView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.studyView, _ = m.studyView.Update(sz)
	m.assessmentView, _ = m.assessmentView.Update(sz)
	m.savedView, _ = m.savedView.Update(sz)
}

func (m *Model) rememberLabel(item *sessiondto.ItemView) {
	if item != nil {
		m.savedView.Remember(item.ID, item.Label)
	}
}

func sessionEnded(events []sessiondto.SessionEvent) bool {
	for _, ev := range events {
		if ev.Kind == "completed" || ev.Kind == "abandoned" {
			return true
		}
	}
	return false
}

func describeEvent(ev sessiondto.SessionEvent) string {
	switch ev.Kind {
	case "loaded":
		return fmt.Sprintf("%s session started: %d words", ev.Flow, ev.Total)
	case "completed":
		return fmt.Sprintf("%s session complete: %d/%d answered", ev.Flow, ev.Answered, ev.Total)
	case "abandoned":
		return fmt.Sprintf("%s session ended after %d/%d", ev.Flow, ev.Answered, ev.Total)
	}
	return ev.Flow + ": " + ev.Kind
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) sayCmd(label string) tea.Cmd {
	p := m.pronunciation
	return func() tea.Msg {
		out, err := p.Pronounce(context.Background(), label)
		switch {
		case err != nil:
			return components.StatusMsg{Text: "pronounce: " + err.Error()}
		case out.Ignored:
			return components.StatusMsg{Text: "already playing"}
		}
		return components.StatusMsg{Text: fmt.Sprintf("said %q (%s)", out.Label, out.Source)}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────

// speaker narrows the pronunciation use-case to what the saved view needs.
type speaker struct{ p pronunciationin.Usecase }

func (s speaker) Say(ctx context.Context, label string) error {
	_, err := s.p.Pronounce(ctx, label)
	return err
}
