package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mcpanel/pkg/sdk"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxEventLines = 2000

type eventModel struct {
	sub       <-chan sdk.Event
	viewport  viewport.Model
	textInput textinput.Model
	err       error
	ready     bool
	server    string
	details   *sdk.Server
	stats     *sdk.ServerStats
	lines     []string
	quitting  bool
	back      bool
	client    *sdk.Client
	width     int
	height    int
}

func initialEventModel(server string, sub <-chan sdk.Event, client *sdk.Client) eventModel {
	ti := textinput.New()
	ti.Placeholder = "Filter lines..."
	ti.CharLimit = 64
	ti.Width = 30

	return eventModel{
		sub:       sub,
		textInput: ti,
		server:    server,
		client:    client,
	}
}

func (m eventModel) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.sub),
		getServerDetails(m.client, m.server),
		tickCmd(),
	)
}

type eventMsg sdk.Event
type streamClosedMsg struct{}
type fetchErrMsg error
type serverDetailsMsg struct {
	server *sdk.Server
	stats  *sdk.ServerStats
}
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(sub <-chan sdk.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func getServerDetails(client *sdk.Client, name string) tea.Cmd {
	if name == "" {
		return nil
	}
	return func() tea.Msg {
		srv, err := client.GetServer(name)
		if err != nil {
			return fetchErrMsg(err)
		}
		stats, _ := client.GetServerStats(name)
		return serverDetailsMsg{server: srv, stats: stats}
	}
}

// matchesServer reports whether ev should be shown when following name.
func matchesServer(ev sdk.Event, name string) bool {
	if name == "" {
		return true
	}
	for _, n := range EventServer(ev) {
		if n == name {
			return true
		}
	}
	return false
}

func (m eventModel) filtered() string {
	needle := strings.ToLower(m.textInput.Value())
	if needle == "" {
		return strings.Join(m.lines, "\n")
	}
	var out []string
	for _, l := range m.lines {
		if strings.Contains(strings.ToLower(l), needle) {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func (m eventModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.textInput.Focused() {
				m.textInput.Blur()
				return m, nil
			}
			m.back = true
			return m, tea.Quit
		}
		if msg.String() == "/" && !m.textInput.Focused() {
			m.textInput.Focus()
			return m, textinput.Blink
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 12
		contentWidth := msg.Width - 6

		if !m.ready {
			m.viewport = viewport.New(contentWidth, msg.Height-headerHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = msg.Height - headerHeight
		}
		m.viewport.SetContent(m.filtered())

	case eventMsg:
		ev := sdk.Event(msg)
		if matchesServer(ev, m.server) {
			if ev.Event == "server_renamed" && ev.String("old_name") == m.server {
				m.server = ev.String("new_name")
			}
			m.lines = append(m.lines, renderEvent(ev))
			if len(m.lines) > maxEventLines {
				m.lines = m.lines[len(m.lines)-maxEventLines:]
			}
			m.viewport.SetContent(m.filtered())
			m.viewport.GotoBottom()
		}
		return m, waitForEvent(m.sub)

	case streamClosedMsg:
		m.lines = append(m.lines, errStyle.Render("connection to daemon lost"))
		m.viewport.SetContent(m.filtered())

	case serverDetailsMsg:
		m.details = msg.server
		m.stats = msg.stats

	case fetchErrMsg:
		m.err = msg

	case tickMsg:
		return m, tea.Batch(getServerDetails(m.client, m.server), tickCmd())
	}

	if m.textInput.Focused() {
		before := m.textInput.Value()
		m.textInput, tiCmd = m.textInput.Update(msg)
		if m.textInput.Value() != before {
			m.viewport.SetContent(m.filtered())
		}
	}
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m eventModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	title := headerStyle.Width(m.width).Render("LIVE EVENTS")

	info := "All servers"
	switch {
	case m.details != nil:
		info = fmt.Sprintf("Server: %s %s  •  %s  •  RAM: %d MB",
			StatusIcon(m.details.Status),
			serverStyle.Render(m.details.Name),
			DescribeVersion(*m.details),
			m.details.RAM,
		)
		if m.stats != nil && m.details.Status == "RUNNING" {
			info += fmt.Sprintf("\nCPU: %.1f%%  •  Memory: %s", m.stats.CPU, FormatBytes(m.stats.RAM))
		}
	case m.err != nil:
		info = errStyle.Render(m.err.Error())
	case m.server != "":
		info = "Loading server details..."
	}

	headerBox := baseStyle.
		Width(m.width-4).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(info)

	console := baseStyle.
		Width(m.width - 4).
		Render(m.viewport.View())

	keys := []string{
		keyStyle.Render("/") + descStyle.Render(": filter"),
		keyStyle.Render("esc") + descStyle.Render(": back"),
		keyStyle.Render("ctrl+c") + descStyle.Render(": quit"),
	}
	helpText := strings.Join(keys, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(" • "))

	helpLine := lipgloss.NewStyle().
		Width(m.width - 6).
		Align(lipgloss.Center).
		Render(helpText)

	footerBox := footerStyle.
		Width(m.width - 4).
		Align(lipgloss.Left).
		Render(lipgloss.JoinVertical(lipgloss.Left, "→ "+m.textInput.View(), helpLine))

	return lipgloss.JoinVertical(lipgloss.Center,
		title,
		headerBox,
		console,
		footerBox,
	)
}

// RunEvents follows the realtime channel, limited to server when it is not
// empty. It returns true when the user asked to go back.
func RunEvents(client *sdk.Client, server string) bool {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := client.Subscribe(ctx)
	if err != nil {
		fmt.Printf("Error connecting to events: %v\nPress Enter to continue...", err)
		fmt.Scanln()
		return true
	}

	p := tea.NewProgram(
		initialEventModel(server, sub, client),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	m, err := p.Run()
	if err != nil {
		log.Printf("Error running events UI: %v", err)
		return true
	}

	if em, ok := m.(eventModel); ok {
		return em.back
	}
	return false
}
