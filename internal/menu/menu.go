// Package menu turns the stored button set into the reply keyboard shown to
// users and maps typed labels back to buttons.
package menu

import (
	"sort"

	"frontdesk-bot/internal/store"
)

// RowWidth is the maximum number of buttons per keyboard row.
const RowWidth = 2

// Layout is a keyboard as rows of button labels.
type Layout [][]string

// Empty reports whether there is nothing to show.
func (l Layout) Empty() bool { return len(l) == 0 }

// BuildKeyboard arranges the active buttons by Order into rows of RowWidth.
// It returns nil when no button is active.
func BuildKeyboard(buttons []store.MenuButton) Layout {
	active := sorted(buttons)
	if len(active) == 0 {
		return nil
	}
	var (
		rows Layout
		row  []string
	)
	for _, b := range active {
		row = append(row, b.Label)
		if len(row) == RowWidth {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// Resolve finds the active button whose label equals label exactly.
func Resolve(label string, buttons []store.MenuButton) (store.MenuButton, bool) {
	for _, b := range sorted(buttons) {
		if b.Label == label {
			return b, true
		}
	}
	return store.MenuButton{}, false
}

// sorted returns the active buttons ordered by Order, then ID.
func sorted(buttons []store.MenuButton) []store.MenuButton {
	out := make([]store.MenuButton, 0, len(buttons))
	for _, b := range buttons {
		if b.Active {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}
