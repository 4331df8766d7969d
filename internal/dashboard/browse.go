package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/book"
)

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

// browseState manages the contact list and cursor for the left pane.
type browseState struct {
	entries []book.Entry
	cursor  int
	query   string // Active filter; empty lists everything.
}

// applyList replaces the listed entries, keeping the cursor in range so a
// deletion leaves the selection near where it was.
func (bs browseState) applyList(entries []book.Entry) browseState {
	bs.entries = append([]book.Entry(nil), entries...)
	if bs.cursor >= len(bs.entries) {
		bs.cursor = len(bs.entries) - 1
	}
	if bs.cursor < 0 {
		bs.cursor = 0
	}
	return bs
}

func (bs browseState) handleKey(msg tea.KeyMsg) browseState {
	switch msg.String() {
	case "up", "k":
		if len(bs.entries) > 0 {
			bs.cursor--
			if bs.cursor < 0 {
				bs.cursor = len(bs.entries) - 1
			}
		}

	case "down", "j":
		if len(bs.entries) > 0 {
			bs.cursor++
			if bs.cursor >= len(bs.entries) {
				bs.cursor = 0
			}
		}

	case "home", "g":
		bs.cursor = 0

	case "end", "G":
		if len(bs.entries) > 0 {
			bs.cursor = len(bs.entries) - 1
		}
	}
	return bs
}

// Selected returns the entry at the cursor, or false if the list is empty.
func (bs browseState) Selected() (book.Entry, bool) {
	if len(bs.entries) == 0 || bs.cursor < 0 || bs.cursor >= len(bs.entries) {
		return book.Entry{}, false
	}
	return bs.entries[bs.cursor], true
}

// View renders the list pane content.
func (bs browseState) View(width, height int) string {
	if len(bs.entries) == 0 {
		if bs.query != "" {
			return fmt.Sprintf("No matches for %q", bs.query)
		}
		return "No contacts saved"
	}

	// Keep the cursor row visible when the list is taller than the pane.
	start := 0
	if height > 0 && bs.cursor >= height {
		start = bs.cursor - height + 1
	}
	end := len(bs.entries)
	if height > 0 && end > start+height {
		end = start + height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		e := bs.entries[i]
		if i > start {
			b.WriteByte('\n')
		}
		if i == bs.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		b.WriteString(e.Contact.Name)
		b.WriteString(" ")
		b.WriteString(mutedText.Render(e.Contact.Phone))
	}
	return b.String()
}
