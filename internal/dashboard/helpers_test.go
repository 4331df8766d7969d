package dashboard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/contact"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// runeKey builds a KeyMsg for a single printable rune.
func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// sampleBook returns an in-memory book with three contacts in insertion order
// Zed, alice, Bob.
func sampleBook(t *testing.T) *book.Book {
	t.Helper()
	return book.New([]contact.Contact{
		{Name: "Zed", Phone: "5550003", Email: "zed@example.com"},
		{Name: "alice", Phone: "5550001", Address: "1 Main St"},
		{Name: "Bob", Phone: "5550002"},
	}, nil)
}

// loadedModel returns a sized model that has processed its initial refresh.
func loadedModel(t *testing.T, opts ...ModelOption) Model {
	t.Helper()
	m := NewModel(opts...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	updated, _ = updated.Update(RefreshMsg{})
	return updated.(Model)
}

// press feeds keys through Update and returns the final model and last command.
func press(m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(k)
		m = updated.(Model)
	}
	return m, cmd
}

// entryNames returns the contact names of the listed entries.
func entryNames(m Model) []string {
	var out []string
	for _, e := range m.browse.entries {
		out = append(out, e.Contact.Name)
	}
	return out
}
