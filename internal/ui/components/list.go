package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/opskit/errbook/internal/emoji"
	"github.com/opskit/errbook/internal/playbook"
)

// ListItem represents one selectable row of the pattern list
type ListItem struct {
	ID          string
	Title       string
	Description string
	Status      string
	Icon        string
	Pattern     *playbook.Pattern
}

// List is a navigable, filterable list of playbook patterns
type List struct {
	Items       []ListItem
	Selected    int
	Width       int
	Height      int // visible rows
	ShowNumbers bool
	ShowIcons   bool

	searchQuery   string
	filteredItems []int // Indices of filtered items
}

// NewList creates a new list component
func NewList(width, height int) *List {
	return &List{
		Width:       width,
		Height:      height,
		ShowNumbers: true,
		ShowIcons:   true,
	}
}

// SetItems sets all items in the list
func (l *List) SetItems(items []ListItem) {
	l.Items = items
	l.Selected = 0
	l.updateFilter()
}

// SetSize updates the rendered width and the number of visible rows
func (l *List) SetSize(width, height int) {
	l.Width = width
	l.Height = height
}

// GetSelectedItem returns the currently selected item
func (l *List) GetSelectedItem() *ListItem {
	if len(l.filteredItems) == 0 || l.Selected >= len(l.filteredItems) {
		return nil
	}
	index := l.filteredItems[l.Selected]
	if index >= len(l.Items) {
		return nil
	}
	return &l.Items[index]
}

// MoveUp moves selection up
func (l *List) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
	}
}

// MoveDown moves selection down
func (l *List) MoveDown() {
	if l.Selected < len(l.filteredItems)-1 {
		l.Selected++
	}
}

// SelectID moves the selection to the item with the given id and
// reports whether it was found among the filtered items
func (l *List) SelectID(id string) bool {
	for pos, index := range l.filteredItems {
		if l.Items[index].ID == id {
			l.Selected = pos
			return true
		}
	}
	return false
}

// SetSearch sets the search query and filters items
func (l *List) SetSearch(query string) {
	l.searchQuery = query
	l.Selected = 0
	l.updateFilter()
}

// MatchCount returns how many items pass the current filter
func (l *List) MatchCount() int {
	return len(l.filteredItems)
}

// TotalCount returns how many items the list holds in total
func (l *List) TotalCount() int {
	return len(l.Items)
}

// updateFilter updates the filtered items based on search query
func (l *List) updateFilter() {
	l.filteredItems = l.filteredItems[:0]

	for i, item := range l.Items {
		if l.searchQuery == "" || l.matchesSearch(&item, l.searchQuery) {
			l.filteredItems = append(l.filteredItems, i)
		}
	}
}

// matchesSearch checks if an item matches the search query
func (l *List) matchesSearch(item *ListItem, query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.Description), query) ||
		strings.Contains(strings.ToLower(item.ID), query)
}

// Render renders the visible window of the list. The surrounding
// chrome (title, border, status bar) belongs to the caller.
func (l *List) Render() string {
	secondaryColor := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	normalStyle := lipgloss.NewStyle().Foreground(secondaryColor)

	if len(l.filteredItems) == 0 {
		if l.searchQuery != "" {
			return normalStyle.Render(fmt.Sprintf("No patterns match %q", l.searchQuery))
		}
		return normalStyle.Render("The playbook is empty")
	}

	maxVisible := l.Height
	if maxVisible < 1 {
		maxVisible = 1
	}

	startIndex := 0
	if l.Selected >= maxVisible {
		startIndex = l.Selected - maxVisible + 1
	}

	endIndex := startIndex + maxVisible
	if endIndex > len(l.filteredItems) {
		endIndex = len(l.filteredItems)
	}

	var content []string
	for i := startIndex; i < endIndex; i++ {
		item := l.Items[l.filteredItems[i]]
		content = append(content, l.renderItem(&item, i+1, i == l.Selected))
	}

	if len(l.filteredItems) > maxVisible {
		scrollInfo := fmt.Sprintf("(%d-%d of %d)", startIndex+1, endIndex, len(l.filteredItems))
		content = append(content, "", normalStyle.Render(scrollInfo))
	}

	return lipgloss.JoinVertical(lipgloss.Left, content...)
}

// renderItem renders a single list item
func (l *List) renderItem(item *ListItem, number int, selected bool) string {
	primaryColor := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	secondaryColor := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	selectedColor := lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"}
	infoColor := lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"}
	warningColor := lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	errorColor := lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}

	var parts []string

	if l.ShowNumbers {
		parts = append(parts, fmt.Sprintf("%2d.", number))
	}

	if l.ShowIcons && item.Icon != "" {
		parts = append(parts, item.Icon)
	}

	title := item.Title
	if item.Description != "" {
		title += " - " + item.Description
	}
	parts = append(parts, title)

	line := strings.Join(parts, " ")

	var style lipgloss.Style
	if selected {
		style = lipgloss.NewStyle().Background(selectedColor).Foreground(primaryColor)
	} else {
		style = lipgloss.NewStyle().Foreground(secondaryColor)
		switch item.Status {
		case "error":
			style = style.Foreground(errorColor)
		case "warning":
			style = style.Foreground(warningColor)
		case "info":
			style = style.Foreground(infoColor)
		}
	}

	if l.Width > 4 {
		style = style.Width(l.Width - 4)
	}
	return style.Render(line)
}

// NewPatternList creates a list component over playbook patterns
func NewPatternList(patterns []*playbook.Pattern, width, height int) *List {
	list := NewList(width, height)
	list.SetItems(PatternItems(patterns))
	return list
}

// PatternItems converts playbook patterns into list rows
func PatternItems(patterns []*playbook.Pattern) []ListItem {
	items := make([]ListItem, 0, len(patterns))
	for _, p := range patterns {
		items = append(items, newPatternItem(p))
	}
	return items
}

func newPatternItem(p *playbook.Pattern) ListItem {
	status := ""
	icon := emoji.GetEmoji("pattern")

	switch p.Severity {
	case playbook.SeverityHigh:
		status = "error"
		icon = emoji.GetEmoji("high")
	case playbook.SeverityMedium:
		status = "warning"
		icon = emoji.GetEmoji("medium")
	case playbook.SeverityLow:
		status = "info"
		icon = emoji.GetEmoji("low")
	}

	category := p.Category
	if category == "" {
		category = "general"
	}

	description := fmt.Sprintf("%s • %s • trust %.0f%%",
		category, p.Severity, p.Feedback.TrustScore()*100)
	if len(p.Fixes) > 0 {
		description += fmt.Sprintf(" • %d fixes", len(p.Fixes))
	}

	return ListItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: description,
		Status:      status,
		Icon:        icon,
		Pattern:     p,
	}
}
