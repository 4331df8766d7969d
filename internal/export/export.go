// Package export writes the contact collection to tabular exchange files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/smileynet/contactbook/internal/contact"
)

// DefaultPath is the export file used when the caller gives none.
const DefaultPath = "contacts_export.csv"

// SheetName is the worksheet used for spreadsheet exports.
const SheetName = "Contacts"

// Header is the fixed column order of every export.
var Header = []string{"name", "phone", "email", "address"}

// Exporter writes contacts as CSV, or as an XLSX workbook when the
// destination ends in .xlsx.
type Exporter struct {
	logger *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used for export diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes contacts to path. It returns contact.ErrEmpty without
// touching the filesystem when there is nothing to write, and wraps any
// write failure in contact.ErrIO.
func (e *Exporter) Export(contacts []contact.Contact, path string) error {
	if len(contacts) == 0 {
		return fmt.Errorf("export: %w", contact.ErrEmpty)
	}
	if path == "" {
		path = DefaultPath
	}

	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = writeXLSX(contacts, path)
	} else {
		err = writeCSV(contacts, path)
	}
	if err != nil {
		e.logger.Error("export failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("export: %w: %w", contact.ErrIO, err)
	}

	e.logger.Info("exported contacts", zap.String("path", path), zap.Int("count", len(contacts)))
	return nil
}

// Row returns the export columns for c in Header order.
func Row(c contact.Contact) []string {
	return []string{c.Name, c.Phone, c.Email, c.Address}
}

func writeCSV(contacts []contact.Contact, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := w.Write(Row(c)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(contacts []contact.Contact, path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, c := range contacts {
		if err := setRow(f, i+2, Row(c)); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}
