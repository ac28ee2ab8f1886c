package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// PressedMsg is sent when a keyboard button is chosen.
type PressedMsg struct {
	Label string
}

// Keyboard renders a reply keyboard and moves a cursor over it.
type Keyboard struct {
	Rows [][]string
	Row  int
	Col  int
}

func NewKeyboard(rows [][]string) Keyboard {
	return Keyboard{Rows: rows}
}

// Empty reports whether there is nothing to choose.
func (k Keyboard) Empty() bool {
	return len(k.Rows) == 0
}

// Selected is the label under the cursor.
func (k Keyboard) Selected() (string, bool) {
	if k.Row >= len(k.Rows) || k.Col >= len(k.Rows[k.Row]) {
		return "", false
	}
	return k.Rows[k.Row][k.Col], true
}

func (k Keyboard) Update(msg tea.Msg) (Keyboard, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || k.Empty() {
		return k, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if k.Row > 0 {
			k.Row--
		}
	case "down", "j":
		if k.Row < len(k.Rows)-1 {
			k.Row++
		}
	case "left", "h":
		if k.Col > 0 {
			k.Col--
		}
	case "right", "l":
		k.Col++
	case "enter":
		if label, ok := k.Selected(); ok {
			return k, func() tea.Msg { return PressedMsg{Label: label} }
		}
	}

	if last := len(k.Rows[k.Row]) - 1; k.Col > last {
		k.Col = last
	}
	return k, nil
}

// View renders rows of buttons; the cursor is shown only when focused.
func (k Keyboard) View(focused bool) string {
	rows := make([]string, 0, len(k.Rows))
	for r, labels := range k.Rows {
		buttons := make([]string, len(labels))
		for c, l := range labels {
			buttons[c] = Button{Label: l, Active: focused && r == k.Row && c == k.Col}.View()
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, buttons...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
