package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/playbook"
	"github.com/opskit/errbook/internal/ui/components"
)

// browserView represents the different screens of the playbook browser
type browserView int

const (
	browserViewList browserView = iota
	browserViewDetail
	browserViewHelp
)

// BrowserModel is the interactive playbook browser. It renders the
// pattern list with a detail pane and reloads itself when the playbook
// file changes on disk.
type BrowserModel struct {
	store    *playbook.Store
	watcher  *fsnotify.Watcher
	patterns []*playbook.Pattern

	list *components.List

	width    int
	height   int
	ready    bool
	quitting bool

	currentView browserView
	filtering   bool
	filter      string
	status      string

	styles *Styles
}

// NewBrowserModel creates a browser over the given patterns. The
// watcher may be nil, in which case live reload is disabled.
func NewBrowserModel(store *playbook.Store, patterns []*playbook.Pattern, watcher *fsnotify.Watcher) *BrowserModel {
	return &BrowserModel{
		store:       store,
		watcher:     watcher,
		patterns:    patterns,
		list:        components.NewPatternList(patterns, 0, 0),
		currentView: browserViewList,
		status:      fmt.Sprintf("%s %d patterns loaded", emoji.GetEmoji("playbook"), len(patterns)),
		styles:      GetStyles(),
	}
}

// Init initializes the browser model
func (m *BrowserModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.waitForChange(),
	)
}

func (m *BrowserModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForPlaybookChange(m.watcher, m.store.Path())
}

// Update handles messages and navigation
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case playbookChangedMsg:
		return m, tea.Batch(CreateReloadCommand(m.store), m.waitForChange())
	case playbookReloadedMsg:
		return m.handleReloaded(msg)
	case reloadErrorMsg:
		m.status = fmt.Sprintf("%s reload failed: %v", emoji.GetEmoji("error"), msg.err)
		return m, nil
	case watchErrorMsg:
		m.status = fmt.Sprintf("%s watch error: %v", emoji.GetEmoji("warning"), msg.err)
		return m, m.waitForChange()
	}

	return m, nil
}

// handleWindowResize handles window resize events
func (m *BrowserModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.list.SetSize(min(m.width-8, 100), max(3, m.height-14))
	return m, nil
}

// handleKeyPress handles keyboard input
func (m *BrowserModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.handleQuit()
	case "esc":
		return m.handleEscape()
	case "h", "?":
		return m.handleHelp()
	case "up", "k":
		return m.handleMoveUp()
	case "down", "j":
		return m.handleMoveDown()
	case "enter", " ":
		return m.handleSelection()
	case "/":
		return m.handleStartFilter()
	case "r":
		return m.handleReloadKey()
	}
	return m, nil
}

// handleFilterKey handles keyboard input while the filter is being edited
func (m *BrowserModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.handleQuit()
	case "esc":
		m.filtering = false
		m.filter = ""
		m.list.SetSearch("")
	case "enter":
		m.filtering = false
	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.list.SetSearch(m.filter)
		}
	case "up":
		m.list.MoveUp()
	case "down":
		m.list.MoveDown()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.list.SetSearch(m.filter)
		case tea.KeySpace:
			m.filter += " "
			m.list.SetSearch(m.filter)
		}
	}
	return m, nil
}

// handleQuit handles quit commands
func (m *BrowserModel) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// handleEscape handles escape key
func (m *BrowserModel) handleEscape() (tea.Model, tea.Cmd) {
	if m.currentView != browserViewList {
		m.currentView = browserViewList
		return m, nil
	}
	if m.filter != "" {
		m.filter = ""
		m.list.SetSearch("")
	}
	return m, nil
}

// handleHelp handles help key
func (m *BrowserModel) handleHelp() (tea.Model, tea.Cmd) {
	if m.currentView == browserViewHelp {
		m.currentView = browserViewList
	} else {
		m.currentView = browserViewHelp
	}
	return m, nil
}

// handleMoveUp handles up movement
func (m *BrowserModel) handleMoveUp() (tea.Model, tea.Cmd) {
	m.list.MoveUp()
	return m, nil
}

// handleMoveDown handles down movement
func (m *BrowserModel) handleMoveDown() (tea.Model, tea.Cmd) {
	m.list.MoveDown()
	return m, nil
}

// handleSelection handles enter key presses
func (m *BrowserModel) handleSelection() (tea.Model, tea.Cmd) {
	if m.currentView == browserViewList && m.list.GetSelectedItem() != nil {
		m.currentView = browserViewDetail
	}
	return m, nil
}

// handleStartFilter switches the list into filter-editing mode
func (m *BrowserModel) handleStartFilter() (tea.Model, tea.Cmd) {
	if m.currentView == browserViewList {
		m.filtering = true
	}
	return m, nil
}

// handleReloadKey re-reads the playbook on demand
func (m *BrowserModel) handleReloadKey() (tea.Model, tea.Cmd) {
	return m, CreateReloadCommand(m.store)
}

// handleReloaded swaps in the freshly loaded patterns, keeping the
// current selection when its pattern still exists
func (m *BrowserModel) handleReloaded(msg playbookReloadedMsg) (tea.Model, tea.Cmd) {
	var selectedID string
	if item := m.list.GetSelectedItem(); item != nil {
		selectedID = item.ID
	}

	m.patterns = msg.patterns
	m.list.SetItems(components.PatternItems(m.patterns))
	m.list.SetSearch(m.filter)
	if selectedID != "" {
		m.list.SelectID(selectedID)
	}

	m.status = fmt.Sprintf("%s reloaded %d patterns at %s",
		emoji.GetEmoji("playbook"), len(m.patterns), time.Now().Format("15:04:05"))
	return m, nil
}

// View renders the browser
func (m *BrowserModel) View() string {
	if !m.ready {
		return m.renderLoadingScreen()
	}

	if m.quitting {
		return m.renderGoodbyeScreen()
	}

	switch m.currentView {
	case browserViewDetail:
		return m.renderDetailView()
	case browserViewHelp:
		return m.renderHelpView()
	default:
		return m.renderListView()
	}
}

func (m *BrowserModel) renderLoadingScreen() string {
	loading := m.styles.Header.Render("Loading playbook...")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loading)
}

func (m *BrowserModel) renderGoodbyeScreen() string {
	goodbye := m.styles.Success.Render("Thanks for using errbook! 👋")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, goodbye)
}

func (m *BrowserModel) renderListView() string {
	title := m.styles.Title.Render("Error Playbook")
	source := m.styles.Muted.Render(filepath.Base(m.store.Path()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, " ", source),
		"",
		m.renderStatsLine(),
		m.renderFilterLine(),
		"",
		m.list.Render(),
		"",
		m.styles.Muted.Render(m.status),
		m.styles.Muted.Render("↑↓ Navigate • Enter Details • / Filter • r Reload • h Help • q Quit"),
	)

	box := m.styles.Box.Width(min(m.width-4, 104))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(content))
}

// renderStatsLine summarizes the loaded playbook by severity
func (m *BrowserModel) renderStatsLine() string {
	var high, medium, low int
	for _, p := range m.patterns {
		switch p.Severity {
		case playbook.SeverityHigh:
			high++
		case playbook.SeverityMedium:
			medium++
		case playbook.SeverityLow:
			low++
		}
	}

	stats := fmt.Sprintf("%d patterns • %s %d high • %s %d medium • %s %d low",
		len(m.patterns),
		emoji.GetEmoji("high"), high,
		emoji.GetEmoji("medium"), medium,
		emoji.GetEmoji("low"), low,
	)
	return m.styles.Muted.Render(stats)
}

func (m *BrowserModel) renderFilterLine() string {
	switch {
	case m.filtering:
		line := fmt.Sprintf("Filter: %s█ (%d of %d)", m.filter, m.list.MatchCount(), m.list.TotalCount())
		return m.styles.Header.Render(line)
	case m.filter != "":
		line := fmt.Sprintf("Filter: %s (%d of %d) • Esc to clear", m.filter, m.list.MatchCount(), m.list.TotalCount())
		return m.styles.Info.Render(line)
	default:
		return ""
	}
}

func (m *BrowserModel) renderDetailView() string {
	item := m.list.GetSelectedItem()
	if item == nil || item.Pattern == nil {
		empty := m.styles.Muted.Render("No pattern selected. Press Esc to go back.")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, empty)
	}
	p := item.Pattern

	sevStyle := m.styles.Severity(p.Severity)
	title := m.styles.Title.Render(fmt.Sprintf("%s %s", item.Icon, p.Title))
	meta := m.styles.Muted.Render(fmt.Sprintf("%s • %s • %s",
		p.ID, categoryOrGeneral(p.Category), sevStyle.Render(string(p.Severity))))

	lines := []string{title, meta, ""}

	if p.Fingerprint != "" {
		lines = append(lines,
			m.styles.Header.Render("Fingerprint"),
			"  "+p.Fingerprint,
			"")
	}
	if p.Matcher != "" {
		lines = append(lines,
			m.styles.Header.Render("Matcher (regex)"),
			"  "+p.Matcher,
			"")
	}
	lines = append(lines, m.renderDetailList(emoji.GetEmoji("symptom")+" Symptoms", p.Symptoms)...)
	lines = append(lines, m.renderDetailList(emoji.GetEmoji("cause")+" Root causes", p.RootCauses)...)
	lines = append(lines, m.renderFixes(p.Fixes)...)
	lines = append(lines, m.renderFeedback(p.Feedback)...)
	lines = append(lines, m.styles.Muted.Render("↑↓ Prev/Next pattern • Esc Back • q Quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	box := m.styles.Box.Width(min(m.width-4, 104)).Height(min(m.height-2, 40))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(content))
}

func (m *BrowserModel) renderDetailList(header string, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	lines := []string{m.styles.Header.Render(header)}
	for _, item := range items {
		lines = append(lines, "  - "+item)
	}
	return append(lines, "")
}

func (m *BrowserModel) renderFixes(fixes []playbook.Fix) []string {
	header := emoji.GetEmoji("fix") + " Fixes"
	if len(fixes) == 0 {
		return []string{m.styles.Header.Render(header), m.styles.Muted.Render("  none recorded yet"), ""}
	}

	lines := []string{m.styles.Header.Render(header)}
	for i, fix := range fixes {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, fix.Step))
		if fix.Command != "" {
			lines = append(lines, m.styles.Muted.Render("     $ "+fix.Command))
		}
	}
	return append(lines, "")
}

func (m *BrowserModel) renderFeedback(fb playbook.Feedback) []string {
	line := fmt.Sprintf("%s %d helpful • %s %d harmful • trust %.0f%%",
		emoji.GetEmoji("helpful"), fb.Helpful,
		emoji.GetEmoji("harmful"), fb.Harmful,
		fb.TrustScore()*100)
	return []string{m.styles.Header.Render("Feedback"), "  " + line, ""}
}

func (m *BrowserModel) renderHelpView() string {
	title := m.styles.Title.Render("errbook browser")

	helpSections := []string{
		"🎯 Navigation:",
		"  ↑↓ or j/k    Move between patterns",
		"  Enter        Open pattern details",
		"  Esc          Back to the list",
		"",
		"🔍 Filter:",
		"  /            Start typing a filter (id, title, category)",
		"  Enter        Keep the filter and return to the list",
		"  Esc          Clear the filter",
		"",
		"📖 Playbook:",
		"  r            Reload the playbook file now",
		"  The browser also reloads automatically when the file",
		"  changes on disk.",
		"",
		"🚪 Exit:",
		"  q            Quit",
		"  Ctrl+C       Force quit",
	}

	helpList := make([]string, 0, len(helpSections))
	for _, line := range helpSections {
		switch {
		case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
			helpList = append(helpList, m.styles.Header.Render(line))
		case line == "":
			helpList = append(helpList, "")
		default:
			helpList = append(helpList, m.styles.Muted.Render(line))
		}
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		lipgloss.JoinVertical(lipgloss.Left, helpList...),
		"",
		m.styles.Warning.Render("Press Esc to go back"),
	)

	box := m.styles.Box.Width(min(m.width-4, 80))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(content))
}

func categoryOrGeneral(category string) string {
	if category == "" {
		return "general"
	}
	return category
}

// Run starts the playbook browser. The store's file is watched so
// edits made while browsing show up without restarting.
func Run(store *playbook.Store, patterns []*playbook.Pattern) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create playbook watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(filepath.Dir(store.Path())); err != nil {
		return fmt.Errorf("failed to watch %s: %w", store.Path(), err)
	}

	model := NewBrowserModel(store, patterns, watcher)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
