package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when the picker is given no items.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one entry of the picker.
type PickerItem struct {
	Label    string // token symbol or wallet name
	SubLabel string // shown dimmed, usually an address
	Value    string
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	chosen   int
	canceled bool
}

func newPicker(title string, items []PickerItem) pickerModel {
	return pickerModel{title: title, items: items, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.items)-1)
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.canceled || m.chosen >= 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")
	for i, it := range m.items {
		line := "  " + it.Label
		if it.SubLabel != "" {
			line += "  " + StyleMeta.Render(it.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render("▸ " + it.Label)
			if it.SubLabel != "" {
				line += "  " + StyleMeta.Render(it.SubLabel)
			}
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + Meta("↑/↓ move · enter select · q cancel") + "\n")
	return sb.String()
}

// value returns the chosen value, or "" when the picker was canceled.
func (m pickerModel) value() string {
	if m.canceled || m.chosen < 0 {
		return ""
	}
	return m.items[m.chosen].Value
}

// Pick runs the picker and returns the chosen item's Value, or "" if the
// user canceled.
func Pick(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}
	final, err := tea.NewProgram(newPicker(title, items)).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	return final.(pickerModel).value(), nil
}
