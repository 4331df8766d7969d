package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contactbook/internal/contact"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// statusBarHeight is the number of lines reserved for the status line.
const statusBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the dashboard TUI.
// It manages a two-pane layout with mode-based routing and focus management.
// All ContactSource calls happen inside Update, never in a tea.Cmd.
type Model struct {
	mode     Mode
	focus    Focus
	width    int
	height   int
	viewport viewport.Model
	help     help.Model
	filter   textinput.Model

	browse  browseState
	confirm confirmState

	source     ContactSource
	exporter   Exporter
	exportPath string

	status    string
	statusErr bool
}

// ModelOption configures optional Model dependencies.
type ModelOption func(*Model)

// WithSource sets the contact collection the dashboard browses.
func WithSource(s ContactSource) ModelOption {
	return func(m *Model) { m.source = s }
}

// WithExporter sets the exporter used by the 'e' key.
func WithExporter(e Exporter) ModelOption {
	return func(m *Model) { m.exporter = e }
}

// WithExportPath sets the destination file for exports.
func WithExportPath(path string) ModelOption {
	return func(m *Model) { m.exportPath = path }
}

// NewModel creates a dashboard Model in browse mode with left-pane focus.
func NewModel(opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name or phone"

	m := Model{
		mode:     ModeBrowse,
		focus:    PaneLeft,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		filter:   ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init returns the initial command, which loads the contact list.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

// Mode returns the current view mode.
func (m Model) Mode() Mode { return m.mode }

// Status returns the current status line text.
func (m Model) Status() string { return m.status }

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		leftWidth, rightWidth := PaneWidths(msg.Width)
		vpWidth := rightWidth - borderChrome
		if vpWidth < 0 {
			vpWidth = 0
		}
		m.viewport.Width = vpWidth
		m.viewport.Height = m.contentHeight()
		m.filter.Width = leftWidth - borderChrome - len(m.filter.Prompt) - 1
		m.syncDetail()
		return m, nil

	case RefreshMsg:
		m.reload()
		return m, nil

	case ExportedMsg:
		switch {
		case errors.Is(msg.Err, contact.ErrEmpty):
			m.setStatus("No contacts to export.", true)
		case msg.Err != nil:
			m.setStatus(fmt.Sprintf("Failed to export: %v", msg.Err), true)
		default:
			m.setStatus(fmt.Sprintf("Exported %d contact(s) to %s", msg.Count, msg.Path), false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == ModeFilter {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	case ModeFilter:
		return m.handleFilterKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}
		return m, nil

	case "/":
		m.mode = ModeFilter
		m.focus = PaneLeft
		m.status = ""
		return m, m.filter.Focus()

	case "d":
		if e, ok := m.browse.Selected(); ok {
			m.confirm = confirmState{entry: e}
			m.mode = ModeConfirm
		}
		return m, nil

	case "e":
		return m, m.exportCmd()

	case "r":
		m.reload()
		m.setStatus("Reloaded.", false)
		return m, nil
	}

	if m.focus == PaneRight {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.browse = m.browse.handleKey(msg)
	m.syncDetail()
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeBrowse
		m.filter.Blur()
		return m, nil

	case "esc":
		m.mode = ModeBrowse
		m.filter.Blur()
		m.filter.SetValue("")
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.reload()
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeBrowse
		e := m.confirm.entry
		m.confirm = confirmState{}
		if m.source == nil {
			return m, nil
		}
		if err := m.source.Remove(e.ID); err != nil {
			switch {
			case errors.Is(err, contact.ErrNotFound):
				m.setStatus("Contact not found.", true)
			default:
				m.setStatus(fmt.Sprintf("Failed to save: %v", err), true)
			}
			m.reload()
			return m, nil
		}
		m.reload()
		m.setStatus("Deleted.", false)
		return m, nil

	case "n", "N", "esc":
		m.mode = ModeBrowse
		m.confirm = confirmState{}
		m.setStatus("Cancelled.", false)
		return m, nil
	}
	return m, nil
}

// exportCmd snapshots the contacts and writes them off the update loop.
func (m Model) exportCmd() tea.Cmd {
	if m.exporter == nil || m.source == nil {
		return nil
	}
	contacts := m.source.Contacts()
	exp := m.exporter
	path := m.exportPath
	return func() tea.Msg {
		err := exp.Export(contacts, path)
		return ExportedMsg{Path: path, Count: len(contacts), Err: err}
	}
}

// reload refreshes the list from the source using the current filter.
func (m *Model) reload() {
	if m.source == nil {
		return
	}
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		m.browse = m.browse.applyList(m.source.Sorted())
	} else {
		m.browse = m.browse.applyList(m.source.Search(query))
	}
	m.browse.query = query
	m.syncDetail()
}

// syncDetail points the detail viewport at the selected contact.
func (m *Model) syncDetail() {
	e, ok := m.browse.Selected()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(DetailView(e.Contact))
	m.viewport.GotoTop()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// DetailView renders a contact's fields for the detail pane.
func DetailView(c contact.Contact) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			value = mutedText.Render("-")
		}
		fmt.Fprintf(&b, "%s %s\n", labelText.Render(fmt.Sprintf("%-8s", label+":")), value)
	}
	field("Name", c.Name)
	field("Phone", c.Phone)
	field("Email", c.Email)
	field("Address", c.Address)
	return strings.TrimRight(b.String(), "\n")
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the status line and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - statusBarHeight - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two-pane layout with status line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var leftStyle, rightStyle lipgloss.Style
	if m.focus == PaneLeft {
		leftStyle = FocusedBorder()
		rightStyle = UnfocusedBorder()
	} else {
		leftStyle = UnfocusedBorder()
		rightStyle = FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.viewLeft(contentHeight))
	rightPane := rightStyle.Render(m.viewRight(rightWidth-borderChrome, contentHeight))
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	statusView := StatusLine(m.status, m.statusErr)
	helpView := m.help.View(HelpBindings(m.mode))

	return lipgloss.JoinVertical(lipgloss.Left, panes, statusView, helpView)
}

// viewLeft renders the contact list, topped by the filter input when active.
func (m Model) viewLeft(height int) string {
	if m.mode != ModeFilter && m.browse.query == "" {
		return m.browse.View(0, height)
	}
	listHeight := height - 1
	if listHeight < 1 {
		listHeight = 1
	}
	return m.filter.View() + "\n" + m.browse.View(0, listHeight)
}

// viewRight renders the right pane content based on mode.
func (m Model) viewRight(width, height int) string {
	if m.mode == ModeConfirm {
		return m.confirm.View(width, height)
	}
	if _, ok := m.browse.Selected(); !ok {
		return mutedText.Render("Nothing selected")
	}
	return m.viewport.View()
}
