package tui

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/mgomes/wikisearch/internal/hits"
	"github.com/mgomes/wikisearch/internal/logging"
	"github.com/mgomes/wikisearch/internal/session"
)

// Screen rows used for mouse hit testing. The input box has a border, so it
// spans three rows; the dropdown starts right below it.
const (
	inputTop    = 2
	inputRows   = 3
	dropdownTop = inputTop + inputRows

	headerRows = dropdownTop + 3
	resultRows = 7
)

var log = logging.ForComponent(logging.CompTUI)

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

type SearchModel struct {
	session      *session.Controller
	input        textinput.Model
	spinner      spinner.Model
	focus        focusArea
	highlight    int
	selected     int
	offset       int
	linkOrigin   string
	initialQuery string
	notice       string
	width        int
	height       int
	opener       func(string) error
}

func NewSearchModel(ctrl *session.Controller, linkOrigin, initialQuery string) SearchModel {
	input := textinput.New()
	input.Placeholder = "Enter search query..."
	input.Prompt = ""
	input.Width = 60
	input.Focus()
	if initialQuery != "" {
		input.SetValue(initialQuery)
		input.CursorEnd()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = activeStyle

	return SearchModel{
		session:      ctrl,
		input:        input,
		spinner:      s,
		highlight:    -1,
		linkOrigin:   linkOrigin,
		initialQuery: initialQuery,
		opener:       openInBrowser,
	}
}

func (m SearchModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.session.Listen()}
	if strings.TrimSpace(m.initialQuery) != "" {
		cmds = append(cmds, m.withSpinner(m.session.SubmitQuery(m.initialQuery)))
	}
	return tea.Batch(cmds...)
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.focus == focusResults {
			return m.updateResults(msg)
		}
		return m.updateInput(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-8)
		return m, nil

	case spinner.TickMsg:
		if !m.session.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case session.Settled:
		return m, tea.Batch(m.session.Update(msg), m.session.Listen())

	case session.SuggestionsMsg:
		m.session.Update(msg)
		if m.highlight >= len(m.session.State().Suggestions) {
			m.highlight = -1
		}
		return m, nil

	case session.ResultsMsg:
		m.session.Update(msg)
		if !m.session.State().Loading {
			m.selected = 0
			m.offset = 0
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.linkOrigin = msg.Config.LinkOrigin
			m.session.SetDebounce(msg.Config.Debounce.Duration)
			m.notice = "config reloaded"
		}
		return m, nil

	case openResultMsg:
		if msg.err != nil {
			log.Warn("open_link_failed", slog.String("url", msg.url), slog.String("error", msg.err.Error()))
			m.notice = "could not open " + msg.url
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SearchModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.session.State()
	dropdownOpen := st.SuggestionsVisible() && len(st.Suggestions) > 0

	switch msg.String() {
	case "enter":
		if dropdownOpen && m.highlight >= 0 && m.highlight < len(st.Suggestions) {
			return m.pick(st.Suggestions[m.highlight].Title)
		}
		m.highlight = -1
		return m, m.withSpinner(m.session.Submit())

	case "down":
		if dropdownOpen && m.highlight < len(st.Suggestions)-1 {
			m.highlight++
		}
		return m, nil

	case "up":
		if m.highlight >= 0 {
			m.highlight--
		}
		return m, nil

	case "esc":
		m.session.Dismiss()
		m.highlight = -1
		return m, nil

	case "tab":
		m.focus = focusResults
		m.input.Blur()
		m.session.Dismiss()
		m.highlight = -1
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.session.QueryChanged(value)
		m.highlight = -1
		m.notice = ""
	}
	return m, cmd
}

func (m SearchModel) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.session.State().Results

	switch msg.String() {
	case "q":
		return m.quit()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(results)-1 {
			m.selected++
		}

	case "enter", "o":
		if m.selected < len(results) {
			return m, m.open(results[m.selected])
		}

	case "tab", "shift+tab", "/", "i":
		cmd := m.focusOnInput()
		return m, cmd

	case "esc":
		m.session.Dismiss()
	}

	m.scrollToSelected()
	return m, nil
}

func (m SearchModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		return m, nil
	}

	st := m.session.State()
	if row := m.dropdownRowAt(msg.X, msg.Y, st); row >= 0 {
		return m.pick(st.Suggestions[row].Title)
	}
	if m.inInput(msg.X, msg.Y) {
		cmd := m.focusOnInput()
		return m, cmd
	}

	m.session.Dismiss()
	m.highlight = -1
	return m, nil
}

func (m *SearchModel) focusOnInput() tea.Cmd {
	m.focus = focusInput
	cmd := m.input.Focus()
	m.session.Focus()
	return cmd
}

func (m SearchModel) pick(title string) (tea.Model, tea.Cmd) {
	m.input.SetValue(title)
	m.input.CursorEnd()
	m.highlight = -1
	return m, m.withSpinner(m.session.Pick(title))
}

func (m SearchModel) quit() (tea.Model, tea.Cmd) {
	m.session.Close()
	return m, tea.Quit
}

func (m SearchModel) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m SearchModel) open(r hits.Hit) tea.Cmd {
	url := m.link(r)
	opener := m.opener
	return func() tea.Msg {
		return openResultMsg{url: url, err: opener(url)}
	}
}

func (m SearchModel) link(r hits.Hit) string {
	if strings.HasPrefix(r.URL, "http://") || strings.HasPrefix(r.URL, "https://") {
		return r.URL
	}
	return strings.TrimRight(m.linkOrigin, "/") + r.URL
}

func (m SearchModel) inputBoxWidth() int {
	return lipgloss.Width(inputStyle.Render(m.input.View()))
}

func (m SearchModel) inInput(x, y int) bool {
	return y >= inputTop && y < inputTop+inputRows && x < m.inputBoxWidth()
}

// dropdownRowAt returns the suggestion index under (x, y), or -1.
func (m SearchModel) dropdownRowAt(x, y int, st session.State) int {
	if !st.SuggestionsVisible() || x >= m.inputBoxWidth() {
		return -1
	}
	row := y - dropdownTop
	if row < 0 || row >= len(st.Suggestions) {
		return -1
	}
	return row
}

func (m SearchModel) pageSize(st session.State) int {
	if m.height <= 0 {
		return len(st.Results)
	}
	avail := m.height - headerRows
	if st.SuggestionsVisible() {
		avail -= len(st.Suggestions)
	}
	return max(1, avail/resultRows)
}

func (m *SearchModel) scrollToSelected() {
	page := m.pageSize(m.session.State())
	if page <= 0 {
		return
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+page {
		m.offset = m.selected - page + 1
	}
}

func (m SearchModel) textWidth() int {
	if m.width <= 0 {
		return 76
	}
	return max(20, m.width-4)
}

func (m SearchModel) View() string {
	st := m.session.State()
	width := m.textWidth()

	var b strings.Builder

	b.WriteString(titleStyle.Render("wfind") + " " + dimStyle.Render("Wikipedia Search") + "\n\n")
	b.WriteString(inputStyle.Render(m.input.View()) + "\n")

	if st.SuggestionsVisible() {
		for i, s := range st.Suggestions {
			prefix := "  "
			if i == m.highlight {
				prefix = selectedStyle.Render("> ")
			}
			b.WriteString(prefix + highlightMatches(st.Query, truncate(s.Title, width-2)) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case st.Loading:
		b.WriteString(m.spinner.View() + " Searching...\n\n")
	case st.Err != "":
		b.WriteString(errorStyle.Render(st.Err) + "\n\n")
	case st.HasSearched && st.SearchTime > 0:
		b.WriteString(dimStyle.Render(summaryLine(len(st.Results), st.SearchTime)) + "\n\n")
	}

	if st.Err == "" {
		m.renderResults(&b, st, width)
	}

	if m.notice != "" {
		b.WriteString(dimStyle.Render(m.notice) + "\n")
	}

	if m.focus == focusResults {
		b.WriteString(helpStyle.Render("↑/↓ navigate  enter open  tab search box  q quit"))
	} else {
		b.WriteString(helpStyle.Render("enter search  ↑/↓ suggestions  esc hide  tab results  ctrl+c quit"))
	}

	return b.String()
}

func (m SearchModel) renderResults(b *strings.Builder, st session.State, width int) {
	end := min(len(st.Results), m.offset+m.pageSize(st))
	for i := m.offset; i < end; i++ {
		r := st.Results[i]

		if m.focus == focusResults && i == m.selected {
			b.WriteString(selectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(resultTitleStyle.Render(truncate(r.Title, width-2)) + "\n")

		indent := "    "
		b.WriteString(indent + scoreStyle.Render(fmt.Sprintf("Score: %.4f", r.Score)) + "\n")
		b.WriteString(indent + linkStyle.Render(truncate(m.link(r), width-4)) + "\n")
		for _, line := range wrapText(r.Summary, width-4, 3) {
			b.WriteString(indent + summaryStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	if n := len(st.Results); n > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Found %d %s", n, plural(n))) + "\n")
	} else if st.HasSearched && st.Query != "" && !st.Loading {
		b.WriteString(dimStyle.Render(fmt.Sprintf("No results found for %q", st.Query)) + "\n")
	}
}

func summaryLine(n int, took time.Duration) string {
	ms := float64(took) / float64(time.Millisecond)
	return fmt.Sprintf("Found %d %s (%.2f milliseconds)", n, plural(n), ms)
}

func plural(n int) string {
	if n == 1 {
		return "result"
	}
	return "results"
}

// highlightMatches emphasises the characters of title matched by query.
func highlightMatches(query, title string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return suggestionStyle.Render(title)
	}
	matches := fuzzy.Find(query, []string{title})
	if len(matches) == 0 {
		return suggestionStyle.Render(title)
	}
	return lipgloss.StyleRunes(title, matches[0].MatchedIndexes, matchStyle, suggestionStyle)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if max <= 0 || runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}

func wrapText(s string, width, maxLines int) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || width <= 0 {
		return nil
	}

	words := strings.Split(s, " ")
	var lines []string
	var line string
	i := 0
	for ; i < len(words) && len(lines) < maxLines; i++ {
		w := words[i]
		if runewidth.StringWidth(w) > width {
			w = runewidth.Truncate(w, width, "")
		}
		switch {
		case line == "":
			line = w
		case runewidth.StringWidth(line)+1+runewidth.StringWidth(w) <= width:
			line += " " + w
		default:
			lines = append(lines, line)
			line = w
		}
	}
	truncated := i < len(words)
	if line != "" {
		if len(lines) < maxLines {
			lines = append(lines, line)
		} else {
			truncated = true
		}
	}

	if truncated && len(lines) > 0 {
		last := lines[len(lines)-1]
		if runewidth.StringWidth(last) > width-3 {
			last = runewidth.Truncate(last, width-3, "")
		}
		lines[len(lines)-1] = last + "..."
	}

	return lines
}

func openInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
