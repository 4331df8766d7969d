// Package book implements the in-memory contact collection: lookups,
// validation-guarded mutations and write-through persistence.
package book

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smileynet/contactbook/internal/contact"
)

// Saver persists the full collection after a mutation.
type Saver interface {
	Save(contacts []contact.Contact) error
}

// Entry is a copy of a stored contact together with its arena ID.
type Entry struct {
	ID      uuid.UUID
	Contact contact.Contact
}

// Changes holds the new values for a partial update.
// A blank field leaves the stored value unchanged.
type Changes struct {
	Phone   string
	Email   string
	Address string
}

// ConfirmFunc is asked before a contact is deleted.
type ConfirmFunc func(c contact.Contact) bool

// Book is an ordered collection of contacts keyed by generated IDs.
// It is not safe for concurrent use.
type Book struct {
	records map[uuid.UUID]*contact.Contact
	order   []uuid.UUID
	saver   Saver
	newID   func() uuid.UUID
	logger  *zap.Logger
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the logger used for mutation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithIDGenerator overrides how record IDs are generated.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(b *Book) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// New creates a Book holding contacts in the given order.
// Loaded records are taken as-is; invariants are enforced on mutation only.
func New(contacts []contact.Contact, saver Saver, opts ...Option) *Book {
	b := &Book{
		records: make(map[uuid.UUID]*contact.Contact, len(contacts)),
		saver:   saver,
		newID:   uuid.New,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, c := range contacts {
		b.insert(len(b.order), c)
	}
	return b
}

// Len returns the number of contacts.
func (b *Book) Len() int {
	return len(b.order)
}

// Get returns the entry for id.
func (b *Book) Get(id uuid.UUID) (Entry, bool) {
	c, ok := b.records[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{ID: id, Contact: *c}, true
}

// Entries returns all contacts in collection order.
func (b *Book) Entries() []Entry {
	return b.filter(func(contact.Contact) bool { return true })
}

// Contacts returns a copy of all contacts in collection order.
func (b *Book) Contacts() []contact.Contact {
	out := make([]contact.Contact, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.records[id])
	}
	return out
}

// Sorted returns all contacts ordered by lower-cased name. Ties keep
// collection order.
func (b *Book) Sorted() []Entry {
	entries := b.Entries()
	slices.SortStableFunc(entries, func(x, y Entry) int {
		return strings.Compare(strings.ToLower(x.Contact.Name), strings.ToLower(y.Contact.Name))
	})
	return entries
}

// FindByName returns contacts whose trimmed, lower-cased name equals name's.
func (b *Book) FindByName(name string) []Entry {
	key := contact.NameKey(name)
	return b.filter(func(c contact.Contact) bool {
		return contact.NameKey(c.Name) == key
	})
}

// FindByPhone returns contacts whose phone digits equal phone's digits.
func (b *Book) FindByPhone(phone string) []Entry {
	digits := contact.NormalizePhoneDigits(phone)
	return b.filter(func(c contact.Contact) bool {
		return contact.NormalizePhoneDigits(c.Phone) == digits
	})
}

// Search returns contacts whose name contains query (case-insensitive), or
// whose phone digits contain the query's digits when it has any.
func (b *Book) Search(query string) []Entry {
	q := strings.ToLower(query)
	digits := contact.NormalizePhoneDigits(query)
	return b.filter(func(c contact.Contact) bool {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return true
		}
		return digits != "" && strings.Contains(contact.NormalizePhoneDigits(c.Phone), digits)
	})
}

// Add validates c, rejects name or phone collisions, appends it and persists.
func (b *Book) Add(c contact.Contact) (Entry, error) {
	if err := contact.Validate(c); err != nil {
		return Entry{}, fmt.Errorf("book: add: %w", err)
	}
	if len(b.FindByName(c.Name)) > 0 {
		return Entry{}, fmt.Errorf("book: add %q: %w", c.Name, contact.ErrDuplicateName)
	}
	if len(b.FindByPhone(c.Phone)) > 0 {
		return Entry{}, fmt.Errorf("book: add %q: %w", c.Name, contact.ErrDuplicatePhone)
	}

	stored := contact.Contact{
		Name:    strings.TrimSpace(c.Name),
		Phone:   contact.CollapseSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
	id := b.insert(len(b.order), stored)

	if err := b.persist(); err != nil {
		b.remove(id)
		return Entry{}, fmt.Errorf("book: add %q: %w", stored.Name, err)
	}
	b.logger.Debug("contact added", zap.String("id", id.String()), zap.String("name", stored.Name))
	return Entry{ID: id, Contact: stored}, nil
}

// Update applies changes to the first contact matching name exactly.
// Every provided field is checked before any is assigned, so a failure
// leaves the contact untouched. The phone is stored trimmed but otherwise
// as given.
func (b *Book) Update(name string, changes Changes) (Entry, error) {
	matches := b.FindByName(name)
	if len(matches) == 0 {
		return Entry{}, fmt.Errorf("book: update %q: %w", name, contact.ErrNotFound)
	}
	target := matches[0]
	updated := target.Contact

	if phone := strings.TrimSpace(changes.Phone); phone != "" {
		if err := contact.ValidatePhone(phone); err != nil {
			return Entry{}, fmt.Errorf("book: update %q: %w", name, err)
		}
		for _, other := range b.FindByPhone(phone) {
			if other.ID != target.ID {
				return Entry{}, fmt.Errorf("book: update %q: %w", name, contact.ErrDuplicatePhone)
			}
		}
		updated.Phone = phone
	}
	if email := strings.TrimSpace(changes.Email); email != "" {
		if err := contact.ValidateEmail(email); err != nil {
			return Entry{}, fmt.Errorf("book: update %q: %w", name, err)
		}
		updated.Email = email
	}
	if address := strings.TrimSpace(changes.Address); address != "" {
		updated.Address = address
	}

	rec := b.records[target.ID]
	previous := *rec
	*rec = updated
	if err := b.persist(); err != nil {
		*rec = previous
		return Entry{}, fmt.Errorf("book: update %q: %w", name, err)
	}
	b.logger.Debug("contact updated", zap.String("id", target.ID.String()), zap.String("name", updated.Name))
	return Entry{ID: target.ID, Contact: updated}, nil
}

// Delete removes the first contact matching name exactly once confirm
// approves it. A declined confirmation returns false with no error and
// does not persist.
func (b *Book) Delete(name string, confirm ConfirmFunc) (bool, error) {
	matches := b.FindByName(name)
	if len(matches) == 0 {
		return false, fmt.Errorf("book: delete %q: %w", name, contact.ErrNotFound)
	}
	target := matches[0]
	if confirm == nil || !confirm(target.Contact) {
		b.logger.Debug("delete declined", zap.String("id", target.ID.String()))
		return false, nil
	}
	if err := b.Remove(target.ID); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the contact with id and persists.
func (b *Book) Remove(id uuid.UUID) error {
	c, ok := b.records[id]
	if !ok {
		return fmt.Errorf("book: remove %s: %w", id, contact.ErrNotFound)
	}
	removed := *c
	idx := b.remove(id)

	if err := b.persist(); err != nil {
		b.restore(idx, id, removed)
		return fmt.Errorf("book: remove %q: %w", removed.Name, err)
	}
	b.logger.Debug("contact removed", zap.String("id", id.String()), zap.String("name", removed.Name))
	return nil
}

func (b *Book) filter(keep func(contact.Contact) bool) []Entry {
	var out []Entry
	for _, id := range b.order {
		c := b.records[id]
		if keep(*c) {
			out = append(out, Entry{ID: id, Contact: *c})
		}
	}
	return out
}

// insert stores c under a fresh ID at position idx of the order.
func (b *Book) insert(idx int, c contact.Contact) uuid.UUID {
	id := b.newID()
	b.restore(idx, id, c)
	return id
}

func (b *Book) restore(idx int, id uuid.UUID, c contact.Contact) {
	b.records[id] = &c
	b.order = slices.Insert(b.order, idx, id)
}

// remove drops id from the arena and returns its former position.
func (b *Book) remove(id uuid.UUID) int {
	idx := slices.Index(b.order, id)
	if idx >= 0 {
		b.order = slices.Delete(b.order, idx, idx+1)
	}
	delete(b.records, id)
	return idx
}

func (b *Book) persist() error {
	if b.saver == nil {
		return nil
	}
	if err := b.saver.Save(b.Contacts()); err != nil {
		b.logger.Error("persisting contacts failed", zap.Error(err))
		return fmt.Errorf("%w: %w", contact.ErrIO, err)
	}
	return nil
}
