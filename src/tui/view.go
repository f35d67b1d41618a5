package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"jenkwatch-agent/src/ci"
)

// View manages the builds list.
type View struct {
	list     list.Model
	items    []Item
	delegate *Delegate
}

// NewView creates a new builds list view.
func NewView(styles *StyleConfig) View {
	delegate := NewDelegate(styles)
	l := list.New([]list.Item{}, &delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return View{
		list:     l,
		items:    []Item{},
		delegate: &delegate,
	}
}

// Update handles list updates.
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// SetSize sets the list dimensions.
func (v *View) SetSize(width, height int) {
	v.list.SetSize(width, height)
}

// SetBuilds replaces the displayed builds, keeping the cursor on the same
// build number when it survives the refresh.
func (v *View) SetBuilds(builds []ci.Build) {
	selectedID := 0
	if item, ok := v.SelectedItem(); ok {
		selectedID = item.Build.ID
	}

	v.items = make([]Item, len(builds))
	maxNumber := 0
	for i, b := range builds {
		v.items[i] = Item{Build: b}
		if b.ID > maxNumber {
			maxNumber = b.ID
		}
	}
	v.delegate.SetNumberWidth(maxNumber)

	listItems := make([]list.Item, len(v.items))
	newIndex := 0
	for i, item := range v.items {
		listItems[i] = item
		if selectedID != 0 && item.Build.ID == selectedID {
			newIndex = i
		}
	}
	v.list.SetItems(listItems)
	v.list.Select(newIndex)
}

// SelectLeading moves the cursor to the first (most recent) build.
func (v *View) SelectLeading() {
	if len(v.list.Items()) > 0 {
		v.list.Select(0)
	}
}

// SelectedItem returns the currently selected build item.
func (v View) SelectedItem() (Item, bool) {
	if len(v.list.Items()) == 0 {
		return Item{}, false
	}
	item, ok := v.list.SelectedItem().(Item)
	return item, ok
}

// Count returns the number of displayed builds.
func (v View) Count() int { return len(v.items) }

// GetDelegate exposes the delegate for header column sizing.
func (v View) GetDelegate() *Delegate { return v.delegate }

// Render returns the string representation of the view.
func (v View) Render() string {
	return v.list.View()
}
