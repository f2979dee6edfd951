package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/calebmoran/questforge/pkg/state"
)

const PlaceHolderText = "Type a choice number or the choice itself..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	campaign     *state.CampaignState
	choices      []string
	log          []string
	gameViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool
}

type actionResponseMsg struct {
	response *state.GameResponse
	err      error
}

type campaignMsg struct {
	campaign *state.CampaignState
	err      error
}

type eventsMsg struct {
	events []state.GameEvent
	err    error
}

var (
	gamePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, cs *state.CampaignState) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	gameVp := viewport.New(50, 20)
	gameVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:   cfg,
		client:   client,
		campaign: cs,
		choices:  state.ChoicesFor(cs.Phase),
		log: []string{
			narratorStyle.Render("Your quest begins at the edge of the unknown."),
		},
		gameViewport: gameVp,
		metaViewport: metaVp,
		textarea:     ta,
	}
}

func (m *ConsoleUI) writeGameContent() {
	gameWidth := m.gameViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUESTFORGE") + "\n\n")
	content.WriteString("Pick a numbered choice, or type it out. /help for commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", gameWidth-6)) + "\n\n")

	for _, entry := range m.log {
		content.WriteString(wordwrap.String(entry, gameWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("The story unfolds...") + "\n\n")
	} else if len(m.choices) > 0 {
		for i, c := range m.choices {
			content.WriteString(choiceStyle.Render(fmt.Sprintf("  %d. %s", i+1, c)) + "\n")
		}
	}

	m.gameViewport.SetContent(content.String())
	m.gameViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	cs := m.campaign
	var content strings.Builder
	content.WriteString(titleStyle.Render("CAMPAIGN") + "\n\n")

	content.WriteString("ID:\n")
	content.WriteString(cs.ID.String()[:8] + "...\n\n")

	content.WriteString("Phase:\n")
	content.WriteString(string(cs.Phase) + "\n\n")

	if cs.Character != nil {
		spec := cs.Character.Spec
		content.WriteString(fmt.Sprintf("%s\n", spec.Name))
		content.WriteString(fmt.Sprintf("HP %d/%d  ATK %d  DEF %d\n\n", spec.HP, spec.MaxHP, spec.Attack, spec.Defense))
	}

	if cs.CurrentEnemy != nil {
		e := cs.CurrentEnemy
		content.WriteString("Enemy:\n")
		content.WriteString(fmt.Sprintf("%s  HP %d/%d\n\n", e.Name, e.Health, e.MaxHealth))
	}

	content.WriteString("Inventory:\n")
	if len(cs.Inventory) == 0 {
		content.WriteString("Empty\n")
	} else {
		for _, id := range cs.Inventory {
			content.WriteString("• " + id + "\n")
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /copy: Copy ID\n")
	content.WriteString("• /events: Recent log\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.gameViewport, vpCmd = m.gameViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		gameWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - gameWidth - 6

		m.gameViewport.Width = gameWidth - 2
		m.gameViewport.Height = m.height - 6
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(gameWidth - 4)

		m.ready = true
		m.writeGameContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			choice := input
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.choices) {
				choice = m.choices[n-1]
			}

			m.log = append(m.log, userStyle.Render("You: ")+choice)
			m.loading = true
			m.writeGameContent()
			return m, m.sendAction(choice)
		}

	case actionResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.log = append(m.log, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			resp := msg.response
			m.choices = resp.Choices
			m.log = append(m.log, narratorStyle.Render(resp.Message))
			if resp.CombatResult != nil && resp.CombatResult.Outcome != "" {
				m.log = append(m.log, promptStyle.Render("["+resp.CombatResult.Outcome+"]"))
			}
			if resp.Outcome != nil && resp.Outcome.Notes != "" {
				m.log = append(m.log, promptStyle.Render(resp.Outcome.Notes))
			}
		}
		m.writeGameContent()
		return m, m.refreshCampaign()

	case campaignMsg:
		if msg.err == nil && msg.campaign != nil {
			m.campaign = msg.campaign
			m.writeMetadata()
		}

	case eventsMsg:
		if msg.err != nil {
			m.log = append(m.log, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			for _, ev := range msg.events {
				m.log = append(m.log, promptStyle.Render(fmt.Sprintf("#%d [%s] %s", ev.EventNumber, ev.Type, ev.Message)))
			}
		}
		m.writeGameContent()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.gameViewport, vpCmd = m.gameViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/copy":
		if err := clipboard.WriteAll(m.campaign.ID.String()); err != nil {
			m.log = append(m.log, errorStyle.Render("Could not copy campaign ID: "+err.Error()))
		} else {
			m.log = append(m.log, promptStyle.Render("Campaign ID copied to clipboard."))
		}
		m.writeGameContent()
		return m, nil

	case "/events":
		return m, m.loadEvents()

	case "/help":
		m.log = append(m.log, promptStyle.Render("Commands: /copy /events /quit"))
		m.writeGameContent()
		return m, nil

	default:
		m.log = append(m.log, errorStyle.Render("Unknown command: "+input))
		m.writeGameContent()
		return m, nil
	}
}

func (m ConsoleUI) sendAction(choice string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendChoice(m.client, m.config.APIBaseURL, m.campaign.ID, choice)
		return actionResponseMsg{response: resp, err: err}
	}
}

func (m ConsoleUI) refreshCampaign() tea.Cmd {
	return func() tea.Msg {
		cs, err := getCampaign(m.client, m.config.APIBaseURL, m.campaign.ID)
		return campaignMsg{campaign: cs, err: err}
	}
}

func (m ConsoleUI) loadEvents() tea.Cmd {
	return func() tea.Msg {
		events, err := getEvents(m.client, m.config.APIBaseURL, m.campaign.ID, 10)
		return eventsMsg{events: events, err: err}
	}
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	gamePanel := gamePanelStyle.Render(m.gameViewport.View() + "\n" + m.textarea.View())
	metaPanel := metaPanelStyle.Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, gamePanel, metaPanel)
}
