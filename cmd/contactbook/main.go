package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/config"
	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/dashboard"
	"github.com/smileynet/contactbook/internal/export"
	"github.com/smileynet/contactbook/internal/logging"
	"github.com/smileynet/contactbook/internal/menu"
	"github.com/smileynet/contactbook/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command.
type Globals struct {
	File     string `help:"Contacts data file (overrides config)." placeholder:"PATH"`
	Config   string `help:"Extra config file layered over user and project config." placeholder:"PATH"`
	LogLevel string `help:"Log level: debug, info, warn, error or off." placeholder:"LEVEL"`
}

// CLI is the top-level command structure for contactbook.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Menu    MenuCmd          `cmd:"" default:"1" help:"Run the interactive menu (default)."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	List    ListCmd          `cmd:"" help:"List all contacts sorted by name."`
	Search  SearchCmd        `cmd:"" help:"Search contacts by name or phone."`
	Update  UpdateCmd        `cmd:"" help:"Update a contact's phone, email or address."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact by exact name."`
	Export  ExportCmd        `cmd:"" help:"Export contacts to CSV or XLSX."`
	Browse  BrowseCmd        `cmd:"" help:"Open the interactive contact browser."`
}

const (
	exitSuccess = 0
	exitFailure = 1
	exitSetup   = 2
)

// operationError is a failed contact operation. Its message is the one
// shown to the user; the cause stays available to errors.Is.
type operationError struct {
	msg string
	err error
}

func (e *operationError) Error() string { return e.msg }
func (e *operationError) Unwrap() error { return e.err }

func failed(msg string, err error) error {
	return &operationError{msg: msg, err: err}
}

// app bundles the dependencies built from configuration.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.FileStore
	book     *book.Book
	exporter *export.Exporter
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// loadConfig loads layered config from user, project and extra paths with
// env overrides. Flags are applied by the caller.
func loadConfig(extra string) (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contactbook/config.yaml"),
		".contactbook.yaml",
		extra,
	)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// open loads config, builds the logger and loads the contact book.
// A corrupt data file is reported on warn and the book starts empty.
func (g *Globals) open(warn io.Writer) (*app, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, err
	}
	if g.File != "" {
		cfg.Storage.DataFile = g.File
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	st := store.NewFileStore(cfg.Storage.DataFile, store.WithLogger(logger))
	contacts, err := st.Load()
	switch {
	case errors.Is(err, store.ErrCorrupt):
		_, _ = fmt.Fprintf(warn, "warning: %v\n", err)
	case err != nil:
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		book:     book.New(contacts, st, book.WithLogger(logger)),
		exporter: export.New(export.WithLogger(logger)),
	}, nil
}

// MenuCmd runs the numbered interactive menu.
type MenuCmd struct{}

// Run opens the book and runs the menu on stdin/stdout.
func (m *MenuCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	defer a.close()
	return m.run(os.Stdin, os.Stdout, a.book, a.exporter, a.cfg.Export.DefaultFile)
}

func (m *MenuCmd) run(in io.Reader, w io.Writer, b *book.Book, exp menu.Exporter, exportPath string) error {
	return menu.New(b, exp, in, w, menu.WithExportPath(exportPath)).Run()
}

// AddCmd adds one contact.
type AddCmd struct {
	Name    string `arg:"" help:"Contact name."`
	Phone   string `arg:"" help:"Phone number (at least 7 digits)."`
	Email   string `help:"Email address."`
	Address string `help:"Postal address."`
}

// Run opens the book and adds the contact.
func (c *AddCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer a.close()
	return c.run(os.Stdout, a.book)
}

func (c *AddCmd) run(w io.Writer, b *book.Book) error {
	_, err := b.Add(contact.Contact{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address})
	if err != nil {
		return failed(menu.Describe(err), err)
	}
	_, _ = fmt.Fprintln(w, "Contact added.")
	return nil
}

// ListCmd prints every contact.
type ListCmd struct{}

// Run opens the book and lists it.
func (l *ListCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer a.close()
	return l.run(os.Stdout, a.book)
}

func (l *ListCmd) run(w io.Writer, b *book.Book) error {
	menu.WriteView(w, b)
	return nil
}

// SearchCmd prints contacts matching a query.
type SearchCmd struct {
	Query string `arg:"" help:"Name fragment or phone digits."`
}

// Run opens the book and searches it.
func (s *SearchCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer a.close()
	return s.run(os.Stdout, a.book)
}

func (s *SearchCmd) run(w io.Writer, b *book.Book) error {
	q := strings.TrimSpace(s.Query)
	if q == "" {
		return failed("Enter a search query.", contact.ErrValidation)
	}
	menu.WriteMatches(w, b.Search(q))
	return nil
}

// UpdateCmd changes fields of an existing contact. Omitted flags keep the
// current value.
type UpdateCmd struct {
	Name    string `arg:"" help:"Exact contact name."`
	Phone   string `help:"New phone number."`
	Email   string `help:"New email address."`
	Address string `help:"New postal address."`
}

// Run opens the book and applies the update.
func (u *UpdateCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer a.close()
	return u.run(os.Stdout, a.book)
}

func (u *UpdateCmd) run(w io.Writer, b *book.Book) error {
	_, err := b.Update(u.Name, book.Changes{Phone: u.Phone, Email: u.Email, Address: u.Address})
	if err != nil {
		return failed(menu.DescribeUpdate(err), err)
	}
	_, _ = fmt.Fprintln(w, "Contact updated.")
	return nil
}

// DeleteCmd removes a contact after confirmation.
type DeleteCmd struct {
	Name string `arg:"" help:"Exact contact name."`
	Yes  bool   `short:"y" help:"Delete without asking for confirmation."`
}

// Run opens the book and deletes the contact.
func (d *DeleteCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer a.close()
	return d.run(os.Stdin, os.Stdout, a.book)
}

func (d *DeleteCmd) run(in io.Reader, w io.Writer, b *book.Book) error {
	confirm := func(c contact.Contact) bool {
		if d.Yes {
			return true
		}
		_, _ = fmt.Fprintf(w, "Are you sure you want to delete '%s'? (y/n): ", c.Name)
		sc := bufio.NewScanner(in)
		if !sc.Scan() {
			_, _ = fmt.Fprintln(w)
			return false
		}
		return menu.Confirmed(sc.Text())
	}

	deleted, err := b.Delete(d.Name, confirm)
	if err != nil {
		return failed(menu.Describe(err), err)
	}
	if deleted {
		_, _ = fmt.Fprintln(w, "Deleted.")
	} else {
		_, _ = fmt.Fprintln(w, "Cancelled.")
	}
	return nil
}

// ExportCmd writes all contacts to a CSV or XLSX file.
type ExportCmd struct {
	Path string `arg:"" optional:"" help:"Output file; .xlsx writes a workbook (default from config)."`
}

// Run opens the book and exports it.
func (e *ExportCmd) Run(g *Globals) error {
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer a.close()
	return e.run(os.Stdout, a.book, a.exporter, a.cfg.Export.DefaultFile)
}

func (e *ExportCmd) run(w io.Writer, b *book.Book, exp menu.Exporter, defaultPath string) error {
	path := strings.TrimSpace(e.Path)
	if path == "" {
		path = defaultPath
	}
	if err := exp.Export(b.Contacts(), path); err != nil {
		return failed(menu.DescribeExport(err), err)
	}
	_, _ = fmt.Fprintln(w, "Exported to "+path)
	return nil
}

// BrowseCmd opens the two-pane contact browser.
type BrowseCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the browser TUI.
func (c *BrowseCmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return c.run(false, nil)
	}

	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	defer a.close()

	m := dashboard.NewModel(
		dashboard.WithSource(a.book),
		dashboard.WithExporter(a.exporter),
		dashboard.WithExportPath(a.cfg.Export.DefaultFile),
	)
	return c.run(true, tea.NewProgram(m, tea.WithAltScreen()))
}

func (c *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var oe *operationError
	if errors.As(err, &oe) {
		return exitFailure
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contactbook"),
		kong.Description("Manage a personal contact list stored in a JSON file."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
