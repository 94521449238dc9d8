// Package tui is the live inspection view: a terminal statblock that
// re-renders whenever the visibility overlay changes, from this process or
// any other one sharing the flag store.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/session"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	HideAll key.Binding
	ShowAll key.Binding
	Preview key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Preview, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.HideAll, k.ShowAll, k.Preview},
		{k.Refresh, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
	HideAll: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide all")),
	ShowAll: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "show all")),
	Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "player preview")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	sectionStyle = lipgloss.NewStyle().Bold(true)
	hiddenStyle  = lipgloss.NewStyle().Faint(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// item is one navigable line of the rendered statblock.
type item struct {
	key    statblock.Key
	label  string
	value  string
	hidden bool
	depth  int
}

type renderMsg struct{ sb *statblock.Statblock }
type noticeMsg struct{ text string }

// Model drives one session. The session's OnRender and Notify callbacks feed
// the channels; Update drains them so watch-driven refreshes repaint the
// screen without user input.
type Model struct {
	session   *session.Session
	redaction string

	renders chan *statblock.Statblock
	notices chan string

	sb      *statblock.Statblock
	items   []item
	cursor  int
	preview bool

	keys   keyMap
	help   help.Model
	status string
	width  int
	height int
}

// New wires a model to an unopened session. Run opens it.
func New(s *session.Session, redaction string) *Model {
	m := &Model{
		session:   s,
		redaction: redaction,
		renders:   make(chan *statblock.Statblock, 16),
		notices:   make(chan string, 16),
		keys:      defaultKeys,
		help:      help.New(),
	}
	s.OnRender = m.pushRender
	s.Notify = m.pushNotice
	return m
}

// pushRender never blocks: the session invokes it while holding its own
// lock, possibly from inside a toggle we issued. Oldest snapshot is dropped
// when the buffer is full.
func (m *Model) pushRender(sb *statblock.Statblock) {
	for {
		select {
		case m.renders <- sb:
			return
		default:
			select {
			case <-m.renders:
			default:
			}
		}
	}
}

func (m *Model) pushNotice(text string) {
	select {
	case m.notices <- text:
	default:
	}
}

func (m *Model) waitRender() tea.Cmd {
	return func() tea.Msg { return renderMsg{<-m.renders} }
}

func (m *Model) waitNotice() tea.Cmd {
	return func() tea.Msg { return noticeMsg{<-m.notices} }
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitRender(), m.waitNotice())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case renderMsg:
		m.sb = msg.sb
		m.rebuild()
		cmds = append(cmds, m.waitRender())

	case noticeMsg:
		m.status = msg.text
		cmds = append(cmds, m.waitNotice())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Preview):
			m.preview = !m.preview
			m.rebuild()
		case key.Matches(msg, m.keys.Toggle):
			cmds = append(cmds, m.toggleSelected())
		case key.Matches(msg, m.keys.HideAll):
			cmds = append(cmds, m.bulk(true))
		case key.Matches(msg, m.keys.ShowAll):
			cmds = append(cmds, m.bulk(false))
		case key.Matches(msg, m.keys.Refresh):
			cmds = append(cmds, func() tea.Msg {
				if err := m.session.Refresh(context.Background()); err != nil {
					return noticeMsg{err.Error()}
				}
				return nil
			})
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggleSelected() tea.Cmd {
	if m.preview {
		m.status = "player preview is read only, press p to leave it"
		return nil
	}
	if m.cursor >= len(m.items) {
		return nil
	}
	k := m.items[m.cursor].key
	if k.IsZero() {
		return nil
	}
	return func() tea.Msg {
		if err := m.session.Toggle(context.Background(), k); err != nil {
			return noticeMsg{err.Error()}
		}
		return nil
	}
}

func (m *Model) bulk(hide bool) tea.Cmd {
	if m.preview {
		m.status = "player preview is read only, press p to leave it"
		return nil
	}
	return func() tea.Msg {
		var err error
		if hide {
			err = m.session.HideAll(context.Background())
		} else {
			err = m.session.ShowAll(context.Background())
		}
		if err != nil {
			return noticeMsg{err.Error()}
		}
		return nil
	}
}

// rebuild flattens the current snapshot into navigable lines. In preview
// mode hidden elements are withheld the way an unprivileged render would
// withhold them.
func (m *Model) rebuild() {
	m.items = m.items[:0]
	if m.sb == nil {
		return
	}

	title := m.sb.Title
	if m.preview && m.sb.TitleHidden {
		title = m.redaction
	}
	m.items = append(m.items, item{
		key:    statblock.HeaderKey("name"),
		label:  "Name",
		value:  title,
		hidden: m.sb.TitleHidden,
	})

	for _, sec := range m.sb.Sections {
		if m.preview && sec.Hidden {
			continue
		}
		m.items = append(m.items, item{
			key:    sec.Key,
			label:  sec.Label,
			hidden: sec.Hidden,
		})
		for _, r := range sec.Rows {
			if m.preview && r.Hidden {
				continue
			}
			m.items = append(m.items, item{
				key:    r.Key,
				label:  r.Label,
				value:  r.Value,
				hidden: r.Hidden,
				depth:  1,
			})
		}
		for _, c := range sec.Categories {
			if m.preview && c.Hidden {
				continue
			}
			m.items = append(m.items, item{
				key:    c.Key,
				label:  c.Label,
				hidden: c.Hidden,
				depth:  1,
			})
			for _, t := range c.Tags {
				if m.preview && t.Hidden {
					continue
				}
				m.items = append(m.items, item{
					key:    t.Key,
					label:  t.Label,
					hidden: t.Hidden,
					depth:  2,
				})
			}
		}
	}

	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) View() string {
	var b strings.Builder

	if m.sb == nil {
		b.WriteString("loading…\n")
		b.WriteString("\n" + m.help.View(m.keys))
		return b.String()
	}

	mode := "GM"
	if m.preview {
		mode = previewStyle.Render("PLAYER PREVIEW")
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("[%s] %s", mode, m.sb.System)))
	b.WriteString("\n\n")

	for i, it := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("→ ")
		}

		line := it.label
		if it.value != "" {
			line += ": " + it.value
		}
		switch {
		case it.depth == 0 && i == 0:
			line = titleStyle.Render(line)
		case it.depth == 0:
			line = sectionStyle.Render(line)
		}
		if it.hidden && !m.preview {
			line = hiddenStyle.Render(line) + hiddenStyle.Render(" ✘")
		}

		b.WriteString(cursor + strings.Repeat("  ", it.depth) + line + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status))
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// Run opens the session and blocks inside the program loop until the user
// quits. The session is closed on the way out.
func Run(ctx context.Context, s *session.Session, redaction string) error {
	m := New(s, redaction)
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
