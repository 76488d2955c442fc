package ui

import (
	"fmt"

	"mcpanel/pkg/sdk"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"})
)

type item struct {
	server sdk.Server
}

func (i item) Title() string { return i.server.Name }
func (i item) Description() string {
	return fmt.Sprintf("%s %s | %s | %d MB", StatusIcon(i.server.Status), i.server.Status, DescribeVersion(i.server), i.server.RAM)
}
func (i item) FilterValue() string { return i.server.Name + " " + i.server.Status }

type listKeyMap struct {
	start   key.Binding
	stop    key.Binding
	restart key.Binding
	refresh key.Binding
}

func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		restart: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

type listModel struct {
	list   list.Model
	client *sdk.Client
	keys   *listKeyMap
	choice *sdk.Server
}

func (m listModel) Init() tea.Cmd {
	return nil
}

type statusMsg string
type serverListMsg []sdk.Server

func (m listModel) action(verb string, do func(string) error) tea.Cmd {
	i, ok := m.list.SelectedItem().(item)
	if !ok {
		return nil
	}
	name := i.server.Name
	return tea.Batch(
		func() tea.Msg {
			if err := do(name); err != nil {
				return statusMsg(fmt.Sprintf("Error: %s %s: %v", verb, name, err))
			}
			return statusMsg(fmt.Sprintf("%s %s: done", verb, name))
		},
		m.list.NewStatusMessage(statusStyle.Render(fmt.Sprintf("%s %s...", verb, name))),
	)
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.start):
			return m, m.action("start", m.client.StartServer)
		case key.Matches(msg, m.keys.stop):
			return m, m.action("stop", m.client.StopServer)
		case key.Matches(msg, m.keys.restart):
			return m, m.action("restart", m.client.RestartServer)
		case key.Matches(msg, m.keys.refresh):
			return m, refreshList(m.client)
		case msg.String() == "enter":
			if i, ok := m.list.SelectedItem().(item); ok {
				m.choice = &i.server
				return m, tea.Quit
			}
		}
	case statusMsg:
		cmd := m.list.NewStatusMessage(statusStyle.Render(string(msg)))
		return m, tea.Batch(cmd, refreshList(m.client))
	case serverListMsg:
		return m, m.list.SetItems(toItems(msg))
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m listModel) View() string {
	return docStyle.Render(m.list.View())
}

func toItems(servers []sdk.Server) []list.Item {
	items := make([]list.Item, 0, len(servers))
	for _, s := range servers {
		items = append(items, item{server: s})
	}
	return items
}

func refreshList(client *sdk.Client) tea.Cmd {
	return func() tea.Msg {
		servers, err := client.ListServers()
		if err != nil {
			return nil
		}
		return serverListMsg(servers)
	}
}

// RunServerList shows the server picker and returns the chosen server name,
// or "" when the user quit.
func RunServerList(client *sdk.Client) string {
	servers, err := client.ListServers()
	if err != nil {
		fmt.Printf("Error listing servers: %v\n", err)
		return ""
	}

	keys := newListKeyMap()
	l := list.New(toItems(servers), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Servers"
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.start, keys.stop, keys.restart, keys.refresh}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	m := listModel{
		list:   l,
		client: client,
		keys:   keys,
	}

	finalModel, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		fmt.Printf("Error running list: %v\n", err)
		return ""
	}

	if m, ok := finalModel.(listModel); ok && m.choice != nil {
		return m.choice.Name
	}
	return ""
}
