package saved

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	membershipdto "vocabhub/internal/modules/membership/dto"
	"vocabhub/internal/ui/components"
	"vocabhub/internal/ui/theme"
)

// Port is the slice of the membership use-case this view needs.
type Port interface {
	Refresh(ctx context.Context) error
	Toggle(ctx context.Context, itemID string) (membershipdto.ToggleOutput, error)
	List() membershipdto.ListOutput
}

// Labeler resolves word ids to words. It is optional: without one the view
// falls back to words it has seen on screen.
type Labeler interface {
	Labels(ctx context.Context, ids []string) (map[string]string, error)
}

// Speaker pronounces a word.
type Speaker interface {
	Say(ctx context.Context, label string) error
}

type LoadedMsg struct {
	IDs    []string
	Labels map[string]string
	Err    error
}

type RemovedMsg struct {
	Out membershipdto.ToggleOutput
	Err error
}

type wordItem struct {
	id    string
	label string
}

func (i wordItem) Title() string {
	if i.label == "" {
		return theme.Muted.Render("(unknown word)")
	}
	return i.label
}
func (i wordItem) Description() string { return i.id }
func (i wordItem) FilterValue() string { return i.label }

type Model struct {
	port    Port
	labeler Labeler
	speaker Speaker
	seen    map[string]string
	list    list.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port Port, labeler Labeler, speaker Speaker) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Saved words"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		labeler: labeler,
		speaker: speaker,
		seen:    map[string]string{},
		list:    l,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Remember records the word shown for an item so it can be listed even
// when no Labeler is configured.
func (m *Model) Remember(id, label string) {
	if id != "" && label != "" {
		m.seen[id] = label
	}
}

// Reload refreshes the saved set from the server and re-lists it.
func (m Model) Reload() tea.Cmd {
	port, labeler := m.port, m.labeler
	return func() tea.Msg {
		ctx := context.Background()
		if err := port.Refresh(ctx); err != nil {
			return LoadedMsg{Err: err}
		}
		ids := port.List().ItemIDs
		var labels map[string]string
		if labeler != nil {
			var err error
			if labels, err = labeler.Labels(ctx, ids); err != nil {
				return LoadedMsg{IDs: ids, Err: err}
			}
		}
		return LoadedMsg{IDs: ids, Labels: labels}
	}
}

// Filtering reports whether the list filter is capturing keys.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.height-1)

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Saved words (" + msg.Err.Error() + ")"
		} else {
			m.list.Title = "Saved words"
		}
		items := make([]list.Item, len(msg.IDs))
		for i, id := range msg.IDs {
			label := msg.Labels[id]
			if label == "" {
				label = m.seen[id]
			}
			items[i] = wordItem{id: id, label: label}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case RemovedMsg:
		switch {
		case msg.Err != nil:
			cmds = append(cmds, components.Status("remove failed: "+msg.Err.Error()))
		case msg.Out.Ignored:
			cmds = append(cmds, components.Status("already updating that word"))
		default:
			cmds = append(cmds, m.Reload())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if !m.Filtering() {
			switch msg.String() {
			case "d":
				if item, ok := m.list.SelectedItem().(wordItem); ok {
					cmds = append(cmds, m.removeCmd(item.id))
				}
				return m, tea.Batch(cmds...)
			case "r":
				return m, m.Reload()
			case "p":
				if item, ok := m.list.SelectedItem().(wordItem); ok && item.label != "" && m.speaker != nil {
					cmds = append(cmds, m.sayCmd(item.label))
				}
				return m, tea.Batch(cmds...)
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading saved words...")
	}
	hints := theme.Muted.Render(fmt.Sprintf("%d saved  d: remove  p: pronounce  r: refresh  /: filter", len(m.list.Items())))
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), hints)
}

func (m Model) removeCmd(id string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Toggle(context.Background(), id)
		return RemovedMsg{Out: out, Err: err}
	}
}

func (m Model) sayCmd(label string) tea.Cmd {
	speaker := m.speaker
	return func() tea.Msg {
		if err := speaker.Say(context.Background(), label); err != nil {
			return components.StatusMsg{Text: "pronounce: " + err.Error()}
		}
		return nil
	}
}
