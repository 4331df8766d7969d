package book

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/store"
)

// recordingSaver captures every saved collection and can be made to fail.
type recordingSaver struct {
	saves [][]contact.Contact
	err   error
}

func (s *recordingSaver) Save(contacts []contact.Contact) error {
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, contacts)
	return nil
}

func (s *recordingSaver) last() []contact.Contact {
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Contact.Name
	}
	return out
}

func seeded(t *testing.T, contacts ...contact.Contact) (*Book, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	return New(contacts, saver), saver
}

func TestAdd_Succeeds(t *testing.T) {
	// Given an empty book
	b, saver := seeded(t)

	// When a valid contact is added
	entry, err := b.Add(contact.Contact{Name: "  Jane Roe ", Phone: " 555  123\t0000 ", Email: "jane@x.com"})

	// Then it is stored trimmed with a collapsed phone and persisted once
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	want := contact.Contact{Name: "Jane Roe", Phone: "555 123 0000", Email: "jane@x.com"}
	if diff := cmp.Diff(want, entry.Contact); diff != "" {
		t.Errorf("Add() entry mismatch (-want +got):\n%s", diff)
	}
	if entry.ID == uuid.Nil {
		t.Error("Add() should assign an ID")
	}
	if len(saver.saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(saver.saves))
	}
	if diff := cmp.Diff([]contact.Contact{want}, saver.last()); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_Failures(t *testing.T) {
	existing := contact.Contact{Name: "John Doe", Phone: "555-1234567", Email: "john@x.com"}
	tests := []struct {
		name    string
		add     contact.Contact
		wantErr error
	}{
		{name: "blank name", add: contact.Contact{Name: "  ", Phone: "555-7654321"}, wantErr: contact.ErrNameRequired},
		{name: "short phone", add: contact.Contact{Name: "Amy", Phone: "555-12"}, wantErr: contact.ErrInvalidPhone},
		{name: "bad email", add: contact.Contact{Name: "Amy", Phone: "555-7654321", Email: "amy@"}, wantErr: contact.ErrInvalidEmail},
		{name: "name differs by case", add: contact.Contact{Name: "john doe", Phone: "555-7654321"}, wantErr: contact.ErrDuplicateName},
		{name: "name differs by whitespace", add: contact.Contact{Name: "  JOHN DOE  ", Phone: "555-7654321"}, wantErr: contact.ErrDuplicateName},
		{name: "phone differs by formatting", add: contact.Contact{Name: "Amy", Phone: "(555) 1234567"}, wantErr: contact.ErrDuplicatePhone},
		{name: "validation before duplicates", add: contact.Contact{Name: "John Doe", Phone: "12"}, wantErr: contact.ErrInvalidPhone},
		{name: "name collision before phone collision", add: contact.Contact{Name: "John Doe", Phone: "5551234567"}, wantErr: contact.ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, saver := seeded(t, existing)

			_, err := b.Add(tt.add)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Add() error = %v, want %v", err, tt.wantErr)
			}
			if b.Len() != 1 {
				t.Errorf("Len() = %d, want 1", b.Len())
			}
			if len(saver.saves) != 0 {
				t.Errorf("failed Add should not persist, got %d saves", len(saver.saves))
			}
		})
	}
}

func TestAdd_NameCollisionScenario(t *testing.T) {
	b, _ := seeded(t)

	if _, err := b.Add(contact.Contact{Name: "Jane Roe", Phone: "555-1230000", Email: "jane@x.com"}); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}
	_, err := b.Add(contact.Contact{Name: "Jane Roe", Phone: "555-9990000"})
	if !errors.Is(err, contact.ErrDuplicate) {
		t.Fatalf("second Add() error = %v, want ErrDuplicate", err)
	}
}

func TestAdd_SaveFailureRollsBack(t *testing.T) {
	b, saver := seeded(t)
	saver.err = errors.New("disk full")

	_, err := b.Add(contact.Contact{Name: "Jane", Phone: "5551230000"})

	if !errors.Is(err, contact.ErrIO) {
		t.Fatalf("Add() error = %v, want ErrIO", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after failed save, want 0", b.Len())
	}
}

func TestFindByName(t *testing.T) {
	b, _ := seeded(t,
		contact.Contact{Name: "John Doe", Phone: "5550000001"},
		contact.Contact{Name: "Johnny", Phone: "5550000002"},
	)

	if got := names(b.FindByName("  JOHN doe ")); !cmp.Equal(got, []string{"John Doe"}) {
		t.Errorf("FindByName() = %v, want [John Doe]", got)
	}
	if got := b.FindByName("John"); len(got) != 0 {
		t.Errorf("FindByName(partial) = %v, want none", names(got))
	}
}

func TestFindByPhone(t *testing.T) {
	b, _ := seeded(t, contact.Contact{Name: "John", Phone: "555-123-4567"})

	if got := b.FindByPhone("(555) 1234567"); len(got) != 1 {
		t.Errorf("FindByPhone() = %v, want one match", names(got))
	}
	if got := b.FindByPhone("555123456"); len(got) != 0 {
		t.Errorf("FindByPhone(prefix) = %v, want none", names(got))
	}
}

func TestSearch(t *testing.T) {
	b, _ := seeded(t,
		contact.Contact{Name: "John Doe", Phone: "555-0100000"},
		contact.Contact{Name: "Alice", Phone: "444-2000000"},
		contact.Contact{Name: "Bob", Phone: "555-0300000"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "jo", want: []string{"John Doe"}},
		{query: "ALI", want: []string{"Alice"}},
		{query: "555", want: []string{"John Doe", "Bob"}},
		{query: "0100", want: []string{"John Doe"}},
		{query: "(444) 2", want: []string{"Alice"}},
		{query: "zed", want: nil},
		{query: "o", want: []string{"John Doe", "Bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := names(b.Search(tt.query))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSearch_MatchesBothPredicatesOnce(t *testing.T) {
	b, _ := seeded(t, contact.Contact{Name: "Agent 007", Phone: "555-0070000"})

	if got := b.Search("007"); len(got) != 1 {
		t.Errorf("Search() = %d results, want 1", len(got))
	}
}

func TestSorted(t *testing.T) {
	b, saver := seeded(t,
		contact.Contact{Name: "charlie", Phone: "5550000003"},
		contact.Contact{Name: "Alice", Phone: "5550000001"},
		contact.Contact{Name: "bob", Phone: "5550000002"},
	)

	got := names(b.Sorted())

	if diff := cmp.Diff([]string{"Alice", "bob", "charlie"}, got); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"charlie", "Alice", "bob"}, names(b.Entries())); diff != "" {
		t.Errorf("Sorted() should not reorder the collection (-want +got):\n%s", diff)
	}
	if len(saver.saves) != 0 {
		t.Error("Sorted() should not persist")
	}
}

func TestUpdate_AddressOnly(t *testing.T) {
	// Given a stored contact
	dir := t.TempDir()
	fs := store.NewFileStore(filepath.Join(dir, "contacts.json"))
	b := New([]contact.Contact{{Name: "John", Phone: "555-0100000", Email: "john@x.com", Address: "Old"}}, fs)

	// When only the address is updated
	entry, err := b.Update("john", Changes{Address: "42 New Rd"})

	// Then phone and email are unchanged and the address is persisted
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := contact.Contact{Name: "John", Phone: "555-0100000", Email: "john@x.com", Address: "42 New Rd"}
	if diff := cmp.Diff(want, entry.Contact); diff != "" {
		t.Errorf("Update() mismatch (-want +got):\n%s", diff)
	}
	loaded, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]contact.Contact{want}, loaded); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_PhoneKeepsFormatting(t *testing.T) {
	b, _ := seeded(t, contact.Contact{Name: "John", Phone: "5550100000"})

	entry, err := b.Update("John", Changes{Phone: " 555   999 0000 "})

	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if entry.Contact.Phone != "555   999 0000" {
		t.Errorf("Phone = %q, want internal whitespace kept", entry.Contact.Phone)
	}
}

func TestUpdate_OwnPhoneIsNotDuplicate(t *testing.T) {
	b, _ := seeded(t, contact.Contact{Name: "John", Phone: "555-0100000"})

	if _, err := b.Update("John", Changes{Phone: "(555) 0100000"}); err != nil {
		t.Fatalf("Update() with own phone error = %v", err)
	}
}

func TestUpdate_Failures(t *testing.T) {
	seed := []contact.Contact{
		{Name: "John", Phone: "555-0100000", Email: "john@x.com", Address: "Old"},
		{Name: "Alice", Phone: "555-0200000"},
	}
	tests := []struct {
		name    string
		target  string
		changes Changes
		wantErr error
	}{
		{name: "unknown name", target: "Nobody", changes: Changes{Address: "x"}, wantErr: contact.ErrNotFound},
		{name: "invalid phone", target: "John", changes: Changes{Phone: "123"}, wantErr: contact.ErrInvalidPhone},
		{name: "phone of another contact", target: "John", changes: Changes{Phone: "5550200000"}, wantErr: contact.ErrDuplicatePhone},
		{name: "invalid email after valid phone", target: "John", changes: Changes{Phone: "5559990000", Email: "bad", Address: "New"}, wantErr: contact.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, saver := seeded(t, seed...)

			_, err := b.Update(tt.target, tt.changes)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(seed, b.Contacts()); diff != "" {
				t.Errorf("failed Update should change nothing (-want +got):\n%s", diff)
			}
			if len(saver.saves) != 0 {
				t.Errorf("failed Update should not persist, got %d saves", len(saver.saves))
			}
		})
	}
}

func TestUpdate_BlankChangesKeepValues(t *testing.T) {
	b, saver := seeded(t, contact.Contact{Name: "John", Phone: "5550100000", Email: "j@x.io", Address: "A"})

	entry, err := b.Update("John", Changes{Phone: "  ", Email: "", Address: "\t"})

	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := contact.Contact{Name: "John", Phone: "5550100000", Email: "j@x.io", Address: "A"}
	if diff := cmp.Diff(want, entry.Contact); diff != "" {
		t.Errorf("Update() mismatch (-want +got):\n%s", diff)
	}
	if len(saver.saves) != 1 {
		t.Errorf("saves = %d, want 1", len(saver.saves))
	}
}

func TestUpdate_SaveFailureRollsBack(t *testing.T) {
	b, saver := seeded(t, contact.Contact{Name: "John", Phone: "5550100000"})
	saver.err = errors.New("read-only")

	_, err := b.Update("John", Changes{Address: "New"})

	if !errors.Is(err, contact.ErrIO) {
		t.Fatalf("Update() error = %v, want ErrIO", err)
	}
	if got := b.Contacts()[0].Address; got != "" {
		t.Errorf("Address = %q after failed save, want unchanged", got)
	}
}

func TestDelete_Confirmed(t *testing.T) {
	b, saver := seeded(t,
		contact.Contact{Name: "John", Phone: "5550100000"},
		contact.Contact{Name: "Alice", Phone: "5550200000"},
	)
	var asked contact.Contact

	deleted, err := b.Delete(" JOHN ", func(c contact.Contact) bool {
		asked = c
		return true
	})

	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Fatal("Delete() = false, want true")
	}
	if asked.Name != "John" {
		t.Errorf("confirm asked about %q, want John", asked.Name)
	}
	if diff := cmp.Diff([]string{"Alice"}, names(b.Entries())); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
	if len(saver.saves) != 1 {
		t.Errorf("saves = %d, want 1", len(saver.saves))
	}
}

func TestDelete_DeclinedDoesNotWrite(t *testing.T) {
	// Given a persisted book
	path := filepath.Join(t.TempDir(), "contacts.json")
	fs := store.NewFileStore(path)
	seed := []contact.Contact{{Name: "John", Phone: "5550100000"}}
	if err := fs.Save(seed); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	saver := &countingSaver{next: fs}
	b := New(seed, saver)

	// When the deletion is declined
	deleted, err := b.Delete("John", func(contact.Contact) bool { return false })

	// Then nothing changes and the file is untouched
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("Delete() = true, want false")
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
	if saver.calls != 0 {
		t.Errorf("declined Delete saved %d times, want 0", saver.calls)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Errorf("data file changed:\n%s", after)
	}
}

// countingSaver counts saves before delegating to next.
type countingSaver struct {
	next  Saver
	calls int
}

func (s *countingSaver) Save(contacts []contact.Contact) error {
	s.calls++
	return s.next.Save(contacts)
}

func TestDelete_NotFound(t *testing.T) {
	b, _ := seeded(t, contact.Contact{Name: "John", Phone: "5550100000"})
	called := false

	_, err := b.Delete("Nobody", func(contact.Contact) bool {
		called = true
		return true
	})

	if !errors.Is(err, contact.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	if called {
		t.Error("confirm should not be asked when nothing matches")
	}
}

func TestRemove_SaveFailureRestoresPosition(t *testing.T) {
	b, saver := seeded(t,
		contact.Contact{Name: "A", Phone: "5550000001"},
		contact.Contact{Name: "B", Phone: "5550000002"},
		contact.Contact{Name: "C", Phone: "5550000003"},
	)
	id := b.Entries()[1].ID
	saver.err = errors.New("disk full")

	err := b.Remove(id)

	if !errors.Is(err, contact.ErrIO) {
		t.Fatalf("Remove() error = %v, want ErrIO", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, names(b.Entries())); diff != "" {
		t.Errorf("order after failed Remove (-want +got):\n%s", diff)
	}
	if _, ok := b.Get(id); !ok {
		t.Error("Get() should still find the restored contact")
	}
}

func TestRemove_UnknownID(t *testing.T) {
	b, _ := seeded(t)
	if err := b.Remove(uuid.New()); !errors.Is(err, contact.ErrNotFound) {
		t.Errorf("Remove(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	b, _ := seeded(t, contact.Contact{Name: "John", Phone: "5550100000"})

	entries := b.Entries()
	entries[0].Contact.Phone = "tampered"

	if got := b.Contacts()[0].Phone; got != "5550100000" {
		t.Errorf("stored phone = %q, entries must not alias storage", got)
	}
}

func TestWithIDGenerator(t *testing.T) {
	fixed := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := New([]contact.Contact{{Name: "John", Phone: "5550100000"}}, nil,
		WithIDGenerator(func() uuid.UUID { return fixed }))

	if got := b.Entries()[0].ID; got != fixed {
		t.Errorf("ID = %s, want %s", got, fixed)
	}
}

func TestValidPhoneInvariantAfterMutations(t *testing.T) {
	b, _ := seeded(t)
	_, _ = b.Add(contact.Contact{Name: "A", Phone: "555-0100000"})
	_, _ = b.Add(contact.Contact{Name: "B", Phone: "12"})
	_, _ = b.Update("A", Changes{Phone: "1"})
	_, _ = b.Update("A", Changes{Phone: "777-1234567"})

	for _, c := range b.Contacts() {
		if !contact.IsValidPhone(c.Phone) {
			t.Errorf("contact %q has invalid phone %q", c.Name, c.Phone)
		}
	}
}
