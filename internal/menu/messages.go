package menu

import (
	"errors"
	"fmt"
	"io"

	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/contact"
)

// Describe returns the user-facing message for an operation error.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, contact.ErrNameRequired):
		return "Name required."
	case errors.Is(err, contact.ErrInvalidPhone):
		return "Invalid phone number."
	case errors.Is(err, contact.ErrInvalidEmail):
		return "Invalid email format."
	case errors.Is(err, contact.ErrDuplicateName):
		return "A contact with this name already exists."
	case errors.Is(err, contact.ErrDuplicatePhone):
		return "A contact with this phone already exists."
	case errors.Is(err, contact.ErrNotFound):
		return "Contact not found."
	case errors.Is(err, contact.ErrEmpty):
		return "No contacts to export."
	case errors.Is(err, contact.ErrIO):
		return fmt.Sprintf("Failed to save: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// DescribeUpdate returns the message for a failed update. Rejected input
// cancels the whole update, which the message says.
func DescribeUpdate(err error) string {
	switch {
	case errors.Is(err, contact.ErrInvalidPhone):
		return "Invalid phone format. Update cancelled."
	case errors.Is(err, contact.ErrDuplicatePhone):
		return "Phone already used by another contact. Update cancelled."
	case errors.Is(err, contact.ErrInvalidEmail):
		return "Invalid email. Update cancelled."
	default:
		return Describe(err)
	}
}

// DescribeExport returns the message for a failed export.
func DescribeExport(err error) string {
	if errors.Is(err, contact.ErrEmpty) {
		return Describe(err)
	}
	return fmt.Sprintf("Failed to export: %v", err)
}

// FormatContact renders one numbered listing line.
func FormatContact(n int, c contact.Contact) string {
	return fmt.Sprintf("%d. %s | %s | %s | %s", n, c.Name, c.Phone, c.Email, c.Address)
}

// WriteView prints every contact sorted by name, preceded by the total.
func WriteView(w io.Writer, b *book.Book) {
	entries := b.Sorted()
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No contacts saved.")
		return
	}
	_, _ = fmt.Fprintf(w, "\nTotal contacts: %d\n\n", len(entries))
	for i, e := range entries {
		_, _ = fmt.Fprintln(w, FormatContact(i+1, e.Contact))
	}
	_, _ = fmt.Fprintln(w)
}

// WriteMatches prints search results in collection order.
func WriteMatches(w io.Writer, entries []book.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No matches.")
		return
	}
	_, _ = fmt.Fprintf(w, "Found %d result(s):\n", len(entries))
	for i, e := range entries {
		_, _ = fmt.Fprintln(w, FormatContact(i+1, e.Contact))
	}
}
