// Package menu runs the numbered interactive menu over a line-oriented
// reader and writer.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/export"
)

// Menu is the text shown before every choice.
const Menu = `
Contact Book - Menu
1) Add Contact
2) View All Contacts
3) Search Contact
4) Update Contact
5) Delete Contact
6) Export to CSV
7) Exit
`

// Exporter writes contacts to a destination file.
type Exporter interface {
	Export(contacts []contact.Contact, path string) error
}

// Session is one interactive menu run.
type Session struct {
	book       *book.Book
	exporter   Exporter
	in         *bufio.Scanner
	out        io.Writer
	exportPath string
}

// Option configures a Session.
type Option func(*Session)

// WithExportPath sets the filename offered as the export default.
func WithExportPath(path string) Option {
	return func(s *Session) {
		if path != "" {
			s.exportPath = path
		}
	}
}

// New creates a Session reading answers from in and writing to out.
func New(b *book.Book, exp Exporter, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		book:       b,
		exporter:   exp,
		in:         bufio.NewScanner(in),
		out:        out,
		exportPath: export.DefaultPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu and dispatches choices until Exit is chosen or the
// input ends. Operation failures are printed, never returned.
func (s *Session) Run() error {
	for {
		s.print(Menu)
		choice, err := s.ask("Choose (1-7): ")
		if err != nil {
			return s.finish(err)
		}

		switch choice {
		case "1":
			err = s.add()
		case "2":
			WriteView(s.out, s.book)
		case "3":
			err = s.search()
		case "4":
			err = s.update()
		case "5":
			err = s.delete()
		case "6":
			err = s.export()
		case "7":
			s.println("Goodbye.")
			return nil
		default:
			s.println("Invalid choice.")
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

func (s *Session) add() error {
	name, err := s.ask("Name: ")
	if err != nil {
		return err
	}
	if name == "" {
		s.println(Describe(contact.ErrNameRequired))
		return nil
	}
	phone, err := s.ask("Phone: ")
	if err != nil {
		return err
	}
	email, err := s.ask("Email (optional): ")
	if err != nil {
		return err
	}
	address, err := s.ask("Address (optional): ")
	if err != nil {
		return err
	}

	if _, err := s.book.Add(contact.Contact{Name: name, Phone: phone, Email: email, Address: address}); err != nil {
		s.println(Describe(err))
		return nil
	}
	s.println("Contact added.")
	return nil
}

func (s *Session) search() error {
	q, err := s.ask("Search by name or phone: ")
	if err != nil {
		return err
	}
	if q == "" {
		s.println("Enter a search query.")
		return nil
	}
	WriteMatches(s.out, s.book.Search(q))
	return nil
}

func (s *Session) update() error {
	name, err := s.ask("Enter exact name of contact to update: ")
	if err != nil {
		return err
	}
	matches := s.book.FindByName(name)
	if len(matches) == 0 {
		s.println(Describe(contact.ErrNotFound))
		return nil
	}
	current := matches[0].Contact

	s.println("Leave field empty to keep current value.")
	var changes book.Changes
	if changes.Phone, err = s.ask(fmt.Sprintf("Phone [%s]: ", current.Phone)); err != nil {
		return err
	}
	if changes.Email, err = s.ask(fmt.Sprintf("Email [%s]: ", current.Email)); err != nil {
		return err
	}
	if changes.Address, err = s.ask(fmt.Sprintf("Address [%s]: ", current.Address)); err != nil {
		return err
	}

	if _, err := s.book.Update(name, changes); err != nil {
		s.println(DescribeUpdate(err))
		return nil
	}
	s.println("Contact updated.")
	return nil
}

func (s *Session) delete() error {
	name, err := s.ask("Enter exact name of contact to delete: ")
	if err != nil {
		return err
	}

	var askErr error
	deleted, err := s.book.Delete(name, func(c contact.Contact) bool {
		answer, err := s.ask(fmt.Sprintf("Are you sure you want to delete '%s'? (y/n): ", c.Name))
		if err != nil {
			askErr = err
			return false
		}
		return Confirmed(answer)
	})
	if askErr != nil {
		return askErr
	}
	switch {
	case err != nil:
		s.println(Describe(err))
	case deleted:
		s.println("Deleted.")
	default:
		s.println("Cancelled.")
	}
	return nil
}

func (s *Session) export() error {
	if s.book.Len() == 0 {
		s.println(Describe(contact.ErrEmpty))
		return nil
	}
	filename, err := s.ask(fmt.Sprintf("CSV filename (default %s): ", s.exportPath))
	if err != nil {
		return err
	}
	if filename == "" {
		filename = s.exportPath
	}
	if err := s.exporter.Export(s.book.Contacts(), filename); err != nil {
		s.println(DescribeExport(err))
		return nil
	}
	s.println("Exported to " + filename)
	return nil
}

// Confirmed reports whether answer approves a deletion. Only "y" does.
func Confirmed(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}

// ask prints label and returns the next trimmed input line.
// It returns io.EOF once the input is exhausted.
func (s *Session) ask(label string) (string, error) {
	s.print(label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("menu: reading input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// finish converts end of input into a clean exit.
func (s *Session) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.println("")
		return nil
	}
	return err
}

func (s *Session) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Session) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}
