package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/wikisearch/internal/config"
)

type SetupModel struct {
	endpointInput textinput.Model
	originInput   textinput.Model
	focus         int
	error         string
	checking      bool
	width         int
	height        int
}

func NewSetupModel(cfg *config.Config) SetupModel {
	endpoint := textinput.New()
	endpoint.Placeholder = config.DefaultEndpoint
	endpoint.Focus()
	endpoint.Width = 60

	origin := textinput.New()
	origin.Placeholder = config.DefaultLinkOrigin
	origin.Width = 60

	if cfg != nil {
		endpoint.SetValue(cfg.Endpoint)
		origin.SetValue(cfg.LinkOrigin)
	}

	return SetupModel{
		endpointInput: endpoint,
		originInput:   origin,
	}
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SetupModel) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.endpointInput.Blur()
		m.originInput.Focus()
	} else {
		m.focus = 0
		m.originInput.Blur()
		m.endpointInput.Focus()
	}
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "down", "shift+tab", "up":
			m.toggleFocus()
			return m, nil

		case "enter":
			endpoint := valueOr(m.endpointInput, config.DefaultEndpoint)
			origin := valueOr(m.originInput, config.DefaultLinkOrigin)

			probe := config.Config{Endpoint: endpoint, LinkOrigin: origin}
			if err := probe.Validate(); err != nil {
				m.error = err.Error()
				return m, nil
			}

			m.error = ""
			m.checking = true
			return m, func() tea.Msg {
				return SetupSubmitMsg{
					Endpoint:   endpoint,
					LinkOrigin: origin,
				}
			}
		}

		if m.focus == 0 {
			m.endpointInput, cmd = m.endpointInput.Update(msg)
		} else {
			m.originInput, cmd = m.originInput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SetupErrorMsg:
		m.checking = false
		m.error = msg.Error

	default:
		if m.focus == 0 {
			m.endpointInput, cmd = m.endpointInput.Update(msg)
		} else {
			m.originInput, cmd = m.originInput.Update(msg)
		}
	}

	return m, cmd
}

func valueOr(in textinput.Model, fallback string) string {
	if v := strings.TrimSpace(in.Value()); v != "" {
		return v
	}
	return fallback
}

func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wfind - Setup") + "\n\n")
	b.WriteString("Point wfind at a running search service.\n")
	b.WriteString(dimStyle.Render("Leave a field empty to use the value shown in grey.") + "\n\n")

	b.WriteString(fieldLabel("Search service URL:", m.focus == 0) + "\n")
	b.WriteString(inputStyle.Render(m.endpointInput.View()) + "\n\n")

	b.WriteString(fieldLabel("Article link origin:", m.focus == 1) + "\n")
	b.WriteString(inputStyle.Render(m.originInput.View()) + "\n")

	if m.checking {
		b.WriteString("\n" + dimStyle.Render("Checking service...") + "\n")
	}
	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.error) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab switch field  enter save  esc cancel"))

	return b.String()
}

func fieldLabel(label string, active bool) string {
	if active {
		return activeStyle.Render("> " + label)
	}
	return "  " + label
}
