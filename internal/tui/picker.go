// Package tui provides the BubbleTea-based device picker.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jmsalzman/volink/internal/device"
)

// stage tracks which slot is currently being selected.
type stage int

const (
	stageFirst stage = iota
	stageSecond
	stageDone
)

// Selection holds the pair of devices chosen by the picker.
type Selection struct {
	A device.DeviceInfo
	B device.DeviceInfo
}

// deviceItem wraps a device for the list component.
type deviceItem struct {
	info device.DeviceInfo
}

func (i deviceItem) Title() string { return i.info.Name }

func (i deviceItem) Description() string {
	return i.info.ID
}

func (i deviceItem) FilterValue() string {
	return i.info.Name + " " + i.info.ID
}

// KeyMap defines the key bindings for the picker.
type KeyMap struct {
	Select key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	chosenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the device picker model.
type Model struct {
	devices []device.DeviceInfo
	list    list.Model
	keys    KeyMap

	stage     stage
	first     device.DeviceInfo
	selection *Selection
	aborted   bool

	width  int
	height int
}

// NewModel creates a picker over the given devices.
func NewModel(devices []device.DeviceInfo) Model {
	items := make([]list.Item, 0, len(devices))
	for _, d := range devices {
		items = append(items, deviceItem{info: d})
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "Select first device"
	l.SetShowStatusBar(false)
	l.Styles.Title = titleStyle

	return Model{
		devices: devices,
		list:    l,
		keys:    DefaultKeyMap(),
		stage:   stageFirst,
	}
}

// Selection returns the chosen pair, or nil if the picker was aborted.
func (m Model) Selection() *Selection {
	return m.selection
}

// Aborted reports whether the user cancelled out of the picker.
func (m Model) Aborted() bool {
	return m.aborted
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// Let the list's filter input consume keys while filtering.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.aborted = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(deviceItem)
			if !ok {
				return m, nil
			}
			switch m.stage {
			case stageFirst:
				m.first = item.info
				m.stage = stageSecond
				m.list.Title = "Select second device"
				m.list.ResetFilter()
				m.list.SetItems(m.remainingItems())
				m.list.Select(0)
				return m, nil
			case stageSecond:
				m.selection = &Selection{A: m.first, B: item.info}
				m.stage = stageDone
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// remainingItems returns every device except the one already chosen.
func (m Model) remainingItems() []list.Item {
	items := make([]list.Item, 0, len(m.devices))
	for _, d := range m.devices {
		if d.ID == m.first.ID {
			continue
		}
		items = append(items, deviceItem{info: d})
	}
	return items
}

func (m Model) View() string {
	var header string
	if m.stage == stageSecond {
		header = chosenStyle.Render(fmt.Sprintf("first: %s", m.first.Name)) + "\n"
	}
	return header + m.list.View()
}

// Run displays the picker and blocks until a pair is chosen or the
// user cancels. A nil Selection with a nil error means cancellation.
func Run(devices []device.DeviceInfo) (*Selection, error) {
	if len(devices) < 2 {
		return nil, fmt.Errorf("need at least two devices, found %d", len(devices))
	}

	p := tea.NewProgram(NewModel(devices), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if m.Aborted() {
		return nil, nil
	}
	return m.Selection(), nil
}
