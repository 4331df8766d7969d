// Package store persists the contact collection as a JSON file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/smileynet/contactbook/internal/contact"
)

// DefaultPath is the data file used when no path is configured.
const DefaultPath = "contacts.json"

// ErrCorrupt indicates the data file exists but could not be parsed.
// Load still returns a usable (empty) collection alongside it.
var ErrCorrupt = errors.New("store: data file is corrupt")

// FileStore reads and writes the whole contact collection at path.
type FileStore struct {
	path    string
	logger  *zap.Logger
	corrupt bool
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore creates a FileStore for the data file at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	s := &FileStore{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the data file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the collection from disk.
// A missing or empty file yields an empty collection and no error.
// A malformed file yields an empty collection and an error wrapping ErrCorrupt;
// the next Save moves the malformed file aside before writing.
func (s *FileStore) Load() ([]contact.Contact, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("data file not found, starting empty", zap.String("path", s.path))
			return nil, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var contacts []contact.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		s.corrupt = true
		s.logger.Warn("data file is corrupt, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	s.logger.Debug("loaded contacts", zap.String("path", s.path), zap.Int("count", len(contacts)))
	return contacts, nil
}

// Save overwrites the data file with the full collection.
func (s *FileStore) Save(contacts []contact.Contact) error {
	if s.corrupt {
		backup := s.path + ".corrupt"
		if err := os.Rename(s.path, backup); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store: preserving corrupt file: %w", err)
		}
		s.logger.Warn("moved corrupt data file aside", zap.String("backup", backup))
		s.corrupt = false
	}

	if contacts == nil {
		contacts = []contact.Contact{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contacts); err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	s.logger.Debug("saved contacts", zap.String("path", s.path), zap.Int("count", len(contacts)))
	return nil
}
