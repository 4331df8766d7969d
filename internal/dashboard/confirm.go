package dashboard

import (
	"fmt"
	"strings"

	"github.com/smileynet/contactbook/internal/book"
)

// confirmState holds the contact awaiting delete confirmation.
type confirmState struct {
	entry book.Entry
}

// View renders the confirmation screen for the given dimensions.
func (cs confirmState) View(width, height int) string {
	var b strings.Builder
	c := cs.entry.Contact

	fmt.Fprintf(&b, "Delete %s?\n", c.Name)
	fmt.Fprintf(&b, "\n  Phone:   %s", c.Phone)
	if c.Email != "" {
		fmt.Fprintf(&b, "\n  Email:   %s", c.Email)
	}
	if c.Address != "" {
		fmt.Fprintf(&b, "\n  Address: %s", c.Address)
	}
	b.WriteString("\n\n  This will remove the contact and save the data file.")
	b.WriteString("\n\n  [y] Delete   [n] Cancel")
	return b.String()
}
