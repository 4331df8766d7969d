// Package dashboard implements a two-pane TUI for browsing, filtering,
// deleting and exporting contacts. Separate from internal/menu which
// handles the line-oriented prompt flow.
package dashboard

import (
	"github.com/google/uuid"

	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/contact"
)

// Mode represents the current dashboard view mode.
type Mode int

const (
	ModeBrowse  Mode = iota // Browsing the contact list with detail pane.
	ModeFilter              // Typing a search query.
	ModeConfirm             // Confirming deletion of the selected contact.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Left pane (contact list) has focus.
	PaneRight              // Right pane (detail viewport) has focus.
)

// --- Consumer-side interfaces ---

// ContactSource is the contact collection the dashboard works on.
// It is only called from the Bubble Tea update loop.
type ContactSource interface {
	Sorted() []book.Entry
	Search(query string) []book.Entry
	Contacts() []contact.Contact
	Remove(id uuid.UUID) error
}

// Exporter writes contacts to a file.
type Exporter interface {
	Export(contacts []contact.Contact, path string) error
}

// --- tea.Msg types ---

// RefreshMsg signals that the contact list should be reloaded from the source.
type RefreshMsg struct{}

// ExportedMsg carries the result of an export started with 'e'.
type ExportedMsg struct {
	Path  string
	Count int
	Err   error
}
