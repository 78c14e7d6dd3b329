package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jmaren/chronodeck/config"
	"github.com/jmaren/chronodeck/daynight"
	"github.com/jmaren/chronodeck/engine"
	"github.com/jmaren/chronodeck/format"
	"github.com/jmaren/chronodeck/geonames"
	"github.com/jmaren/chronodeck/registry"
	"github.com/jmaren/chronodeck/tzresolve"
)

// viewState represents the current view state
type viewState int

const (
	viewMain viewState = iota
	viewAdd
	viewDelete
	viewMove
	viewConfirm
)

// rowsMsg carries the output of one engine tick
type rowsMsg []engine.Row

// spinnerTickMsg is sent to update the spinner animation
type spinnerTickMsg time.Time

// geonamesReadyMsg is sent when the GeoNames database is ready
type geonamesReadyMsg struct{}

// geonamesErrorMsg is sent when GeoNames fails to load
type geonamesErrorMsg struct{ err error }

// resolverReadyMsg is sent when the timezone boundary data is loaded
type resolverReadyMsg struct{ finder *tzresolve.Finder }

// resolverErrorMsg is sent when the resolver fails to initialize
type resolverErrorMsg struct{ err error }

// lookupDoneMsg is the result of an asynchronous geocode + timezone
// resolution. gen ties it to the add attempt that started it; a stale gen
// means the attempt was cancelled and the result is dropped.
type lookupDoneMsg struct {
	gen      int
	name     string
	timezone string
	lat      float64
	lon      float64
	country  string
	err      error
}

// model represents the application state
type model struct {
	// Core data
	settings *config.Settings
	reg      *registry.Registry
	eng      *engine.Engine
	cityDB   *geonames.Database
	resolver tzresolve.Resolver
	rows     []engine.Row

	// View state
	state    viewState
	viewport viewport.Model
	ready    bool
	err      error
	status   string
	width    int
	height   int
	quitting bool

	// Spinner state
	spinnerFrame  int
	geonamesReady bool
	resolverReady bool

	// Add mode state
	searchInput        textinput.Model
	searchResults      []geonames.City
	selectedResult     int
	justEnteredAddMode bool // Flag to prevent initial key from appearing in input
	addGen             int  // Generation counter; bumping it cancels in-flight lookups
	addPending         bool
	addErr             error

	// Delete mode state
	deleteList     []registry.Location
	deleteSelected map[int]bool
	deleteCursor   int

	// Move mode state
	moveList   []registry.Location
	moveCursor int

	// Confirm mode state
	confirmMsg    string
	confirmAction func() error
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.Batch(
		spinnerTickCmd(),
		checkGeoNamesCmd(m.cityDB),
		loadResolverCmd(),
	)
}

// Update handles messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			// Reserve space for the command bar (1 newline + 1 bar line)
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.YPosition = 0
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}

	case rowsMsg:
		m.rows = msg

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		// Keep spinning while either data source is still loading
		if !m.geonamesReady || !m.resolverReady {
			cmds = append(cmds, spinnerTickCmd())
		}

	case geonamesReadyMsg:
		m.geonamesReady = true

	case geonamesErrorMsg:
		m.geonamesReady = true // Stop spinner on error too
		m.status = fmt.Sprintf("city database unavailable: %v", msg.err)

	case resolverReadyMsg:
		m.resolver = msg.finder
		m.resolverReady = true

	case resolverErrorMsg:
		m.resolverReady = true
		m.status = fmt.Sprintf("timezone resolver unavailable: %v", msg.err)

	case lookupDoneMsg:
		cmd = m.handleLookupDone(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case error:
		m.err = msg
		return m, tea.Quit
	}

	// Update sub-components based on state
	switch m.state {
	case viewAdd:
		// Only update searchInput if we didn't just enter add mode
		// (prevents the 'a' key from appearing in the input field)
		if !m.justEnteredAddMode {
			m.searchInput, cmd = m.searchInput.Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			if m.cityDB.IsReady() {
				m.searchResults = m.cityDB.Search(m.searchInput.Value(), 50)
				if m.selectedResult >= len(m.searchResults) {
					m.selectedResult = 0
				}
			}
		} else {
			m.justEnteredAddMode = false
		}
	}

	// Update viewport
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input based on current view state
func (m *model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.state {
	case viewMain:
		return m.handleMainKeys(msg)
	case viewAdd:
		return m.handleAddKeys(msg)
	case viewDelete:
		return m.handleDeleteKeys(msg)
	case viewMove:
		return m.handleMoveKeys(msg)
	case viewConfirm:
		return m.handleConfirmKeys(msg)
	}
	return nil
}

// handleMainKeys handles keys in main view
func (m *model) handleMainKeys(msg tea.KeyMsg) tea.Cmd {
	m.status = ""

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit

	case "a":
		// Enter add mode; both data sources must be up first
		if m.geonamesReady && m.resolverReady && m.cityDB.IsReady() && m.resolver != nil {
			m.state = viewAdd
			m.searchInput.Reset()
			m.searchResults = nil
			m.selectedResult = 0
			m.addErr = nil
			m.addPending = false
			m.justEnteredAddMode = true
			m.searchInput.Focus()
			return textinput.Blink
		}
		m.status = "still loading city data, try again shortly"

	case "d":
		m.state = viewDelete
		m.deleteList = m.reg.Snapshot()
		m.deleteSelected = make(map[int]bool)
		m.deleteCursor = 0

	case "m":
		m.state = viewMove
		m.moveList = m.reg.Snapshot()
		m.moveCursor = 0

	case "t":
		// Toggle 12/24-hour rendering; applies from the next tick
		m.settings.TwelveHour = !m.settings.TwelveHour
		m.eng.SetMode(modeFor(m.settings))
		if err := m.settings.Save(); err != nil {
			m.status = fmt.Sprintf("could not save settings: %v", err)
		}

	case "n":
		m.settings.DayNight = !m.settings.DayNight
		m.eng.SetDayNight(m.settings.DayNight)
		if err := m.settings.Save(); err != nil {
			m.status = fmt.Sprintf("could not save settings: %v", err)
		}
	}

	return nil
}

// handleAddKeys handles keys in add view
func (m *model) handleAddKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		// Cancel and return to main; any in-flight lookup result is stale now
		m.addGen++
		m.addPending = false
		m.state = viewMain
		return nil

	case "up":
		if m.selectedResult > 0 {
			m.selectedResult--
		}

	case "down":
		if m.selectedResult < len(m.searchResults)-1 {
			m.selectedResult++
		}

	case "enter":
		if m.addPending {
			return nil
		}
		m.addErr = nil
		m.addGen++

		// Selected search result, or the raw query as an exact-name geocode
		if len(m.searchResults) > 0 && m.selectedResult < len(m.searchResults) {
			city := m.searchResults[m.selectedResult]
			m.addPending = true
			return lookupCmd(m.addGen, city.Name, m.cityDB, m.resolver)
		}
		if query := strings.TrimSpace(m.searchInput.Value()); query != "" {
			m.addPending = true
			return lookupCmd(m.addGen, query, m.cityDB, m.resolver)
		}
	}

	return nil
}

// handleLookupDone registers the looked-up location, unless the attempt
// was cancelled while the lookup was in flight.
func (m *model) handleLookupDone(msg lookupDoneMsg) tea.Cmd {
	if msg.gen != m.addGen {
		slog.Debug("dropping stale lookup result", "component", "ui", "city", msg.name)
		return nil
	}
	m.addPending = false

	if msg.err != nil {
		m.addErr = msg.err
		return nil
	}

	if _, err := m.reg.Add(msg.name, msg.timezone, msg.lat, msg.lon, msg.country); err != nil {
		m.addErr = err
		return nil
	}
	slog.Info("location added",
		"component", "ui",
		"city", msg.name,
		"timezone", msg.timezone,
	)

	m.state = viewMain
	m.status = fmt.Sprintf("added %s (%s)", msg.name, msg.timezone)
	return nil
}

// handleDeleteKeys handles keys in delete view
func (m *model) handleDeleteKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = viewMain
		return nil

	case "up":
		if m.deleteCursor > 0 {
			m.deleteCursor--
		}

	case "down":
		if m.deleteCursor < len(m.deleteList)-1 {
			m.deleteCursor++
		}

	case " ":
		m.deleteSelected[m.deleteCursor] = !m.deleteSelected[m.deleteCursor]

	case "enter":
		var toDelete []registry.Location
		for idx, selected := range m.deleteSelected {
			if selected && idx < len(m.deleteList) {
				toDelete = append(toDelete, m.deleteList[idx])
			}
		}
		if len(toDelete) == 0 {
			m.status = "no cities selected"
			m.state = viewMain
			return nil
		}

		m.state = viewConfirm
		if len(toDelete) == 1 {
			m.confirmMsg = fmt.Sprintf("Delete '%s'? (y/n)", toDelete[0].Name)
		} else {
			m.confirmMsg = fmt.Sprintf("Delete %d selected cities? (y/n)", len(toDelete))
		}
		m.confirmAction = func() error {
			for _, loc := range toDelete {
				if err := m.reg.Remove(loc.ID); err != nil {
					return err
				}
			}
			return nil
		}
	}

	return nil
}

// handleMoveKeys handles keys in move (reorder) view
func (m *model) handleMoveKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		m.state = viewMain
		return nil

	case "up":
		if m.moveCursor > 0 {
			m.moveCursor--
		}

	case "down":
		if m.moveCursor < len(m.moveList)-1 {
			m.moveCursor++
		}

	case "shift+up":
		if m.moveCursor > 0 {
			m.moveList[m.moveCursor-1], m.moveList[m.moveCursor] = m.moveList[m.moveCursor], m.moveList[m.moveCursor-1]
			m.moveCursor--
			m.applyOrder()
		}

	case "shift+down":
		if m.moveCursor < len(m.moveList)-1 {
			m.moveList[m.moveCursor], m.moveList[m.moveCursor+1] = m.moveList[m.moveCursor+1], m.moveList[m.moveCursor]
			m.moveCursor++
			m.applyOrder()
		}
	}

	return nil
}

// applyOrder pushes the move list's current order into the registry.
func (m *model) applyOrder() {
	ids := make([]registry.ID, len(m.moveList))
	for i, loc := range m.moveList {
		ids[i] = loc.ID
	}
	if err := m.reg.Reorder(ids); err != nil {
		// A mutation raced the move view; reload and let the user retry
		m.status = fmt.Sprintf("reorder failed: %v", err)
		m.moveList = m.reg.Snapshot()
		m.moveCursor = 0
	}
}

// handleConfirmKeys handles keys in confirm view
func (m *model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y":
		if err := m.confirmAction(); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		}
		m.state = viewMain
		return nil

	case "n", "esc":
		m.state = viewMain
		return nil
	}

	return nil
}

// View renders the UI
func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit", m.err)
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return "Initializing..."
	}

	switch m.state {
	case viewMain:
		return m.renderMain()
	case viewAdd:
		return m.renderAdd()
	case viewDelete:
		return m.renderDelete()
	case viewMove:
		return m.renderMove()
	case viewConfirm:
		return m.renderConfirm()
	}

	return ""
}

// renderMain renders the main comparison view
func (m model) renderMain() string {
	content := renderRows(m.rows, m.width)
	m.viewport.SetContent(content)

	commandBar := m.renderCommandBar()

	return fmt.Sprintf("%s\n%s", m.viewport.View(), commandBar)
}

// renderAdd renders the add city view
func (m model) renderAdd() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(1, 0)
	b.WriteString(titleStyle.Render("Add City"))
	b.WriteString("\n\n")

	if !m.cityDB.IsReady() {
		if m.cityDB.Err() != nil {
			b.WriteString(fmt.Sprintf("Error loading city database: %v\n", m.cityDB.Err()))
		} else {
			b.WriteString("Loading city database...\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Press ESC to cancel"))
		return b.String()
	}

	b.WriteString("Search city (min 3 characters):\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	switch {
	case m.addPending:
		b.WriteString(dimStyle.Render("Resolving timezone..."))
	case len(m.searchInput.Value()) < 3:
		b.WriteString(dimStyle.Render("Type at least 3 characters to search..."))
	case len(m.searchResults) == 0:
		b.WriteString(dimStyle.Render("No cities found"))
	default:
		b.WriteString(fmt.Sprintf("Results (%d):\n", len(m.searchResults)))
		maxVisible := 10
		start := 0
		if m.selectedResult >= maxVisible {
			start = m.selectedResult - maxVisible + 1
		}
		end := start + maxVisible
		if end > len(m.searchResults) {
			end = len(m.searchResults)
		}

		for i := start; i < end; i++ {
			city := m.searchResults[i]
			line := fmt.Sprintf("  %s, %s (%s)", city.Name, city.CountryCode, city.Timezone)

			if i == m.selectedResult {
				line = lipgloss.NewStyle().
					Foreground(lipgloss.Color("205")).
					Bold(true).
					Render("> " + line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.addErr != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.addErr.Error()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓: Navigate | Enter: Add | ESC: Cancel"))

	return b.String()
}

// renderDelete renders the delete city view
func (m model) renderDelete() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(1, 0)
	b.WriteString(titleStyle.Render("Delete Cities"))
	b.WriteString("\n\n")

	for i, loc := range m.deleteList {
		isSelected := m.deleteSelected[i]
		isCursor := i == m.deleteCursor

		checkbox := " "
		if isSelected {
			checkbox = "x"
		}
		line := fmt.Sprintf("  [%s] %s (%s)", checkbox, loc.Name, loc.Timezone)

		if isCursor {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Render("> " + line)
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓: Navigate | Space: Toggle | Enter: Delete | ESC: Cancel"))

	return b.String()
}

// renderMove renders the reorder view
func (m model) renderMove() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(1, 0)
	b.WriteString(titleStyle.Render("Reorder Cities"))
	b.WriteString("\n\n")

	for i, loc := range m.moveList {
		line := fmt.Sprintf("  %s (%s)", loc.Name, loc.Timezone)
		if i == m.moveCursor {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓: Navigate | Shift+↑/↓: Move | Enter/ESC: Done"))

	return b.String()
}

// renderConfirm renders the confirmation dialog
func (m model) renderConfirm() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(1, 0)
	b.WriteString(titleStyle.Render("Confirm"))
	b.WriteString("\n\n")

	b.WriteString(m.confirmMsg)
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("y: Yes | n/ESC: No"))

	return b.String()
}

// renderCommandBar renders the command bar at the bottom
func (m model) renderCommandBar() string {
	barItemStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	commands := "a: Add | d: Delete | m: Reorder | t: 12/24h | n: Day/Night | q: Quit"
	if m.status != "" {
		commands = m.status
	}
	leftContent := barItemStyle.Render(commands)

	var status string
	if m.geonamesReady && m.resolverReady {
		status = "City data: Ready"
	} else {
		status = fmt.Sprintf("%s Loading city data...", spinnerFrames[m.spinnerFrame])
	}
	rightContent := barItemStyle.Render(status)

	leftWidth := lipgloss.Width(leftContent)
	rightWidth := lipgloss.Width(rightContent)
	spacingWidth := m.width - leftWidth - rightWidth
	if spacingWidth < 0 {
		spacingWidth = 0
	}
	spacing := strings.Repeat(" ", spacingWidth)

	barStyle := lipgloss.NewStyle().Background(lipgloss.Color("235"))
	return barStyle.Render(leftContent + spacing + rightContent)
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// spinnerFrames are the characters used for the loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerTickCmd returns a command that sends a spinner tick message
func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// checkGeoNamesCmd checks if the GeoNames database is ready
func checkGeoNamesCmd(db *geonames.Database) tea.Cmd {
	return func() tea.Msg {
		// Check periodically until ready
		for i := 0; i < 3000; i++ { // Check for up to 5 minutes
			time.Sleep(100 * time.Millisecond)
			if db.IsReady() {
				return geonamesReadyMsg{}
			}
			if err := db.Err(); err != nil {
				return geonamesErrorMsg{err: err}
			}
		}
		return geonamesErrorMsg{err: fmt.Errorf("timeout waiting for GeoNames database")}
	}
}

// loadResolverCmd builds the timezone boundary index off the UI loop.
func loadResolverCmd() tea.Cmd {
	return func() tea.Msg {
		finder, err := tzresolve.NewFinder()
		if err != nil {
			return resolverErrorMsg{err: err}
		}
		return resolverReadyMsg{finder: finder}
	}
}

// lookupCmd geocodes a city and resolves its timezone from coordinates,
// off the UI loop. Registration happens back on the UI loop so a
// cancelled attempt can be dropped before it mutates the registry.
func lookupCmd(gen int, name string, db *geonames.Database, resolver tzresolve.Resolver) tea.Cmd {
	return func() tea.Msg {
		city, err := db.Geocode(name)
		if err != nil {
			return lookupDoneMsg{gen: gen, name: name, err: err}
		}

		timezone, err := resolver.Resolve(city.Lat, city.Lon)
		if err != nil {
			return lookupDoneMsg{gen: gen, name: city.Name, err: err}
		}

		return lookupDoneMsg{
			gen:      gen,
			name:     city.Name,
			timezone: timezone,
			lat:      city.Lat,
			lon:      city.Lon,
			country:  city.CountryCode,
		}
	}
}

// renderRows renders all comparison rows in a grid layout, in
// chronological order (west to east)
func renderRows(rows []engine.Row, width int) string {
	if len(rows) == 0 {
		helpStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Align(lipgloss.Center).
			Padding(2, 4)
		return helpStyle.Render("Press 'a' to add a new city")
	}

	numRows := len(rows)
	cols := calculateColumns(rows, width)
	gridRows := (numRows + cols - 1) / cols // Ceiling division

	// Each card has: border (2) + padding (4) + margins (1 left + 1 right)
	cardOverhead := 8

	widthPerCard := width / cols
	cardWidth := widthPerCard - cardOverhead
	if cardWidth < 20 {
		cardWidth = 20 // Minimum width for readability
	}

	var cards []string
	for _, row := range rows {
		cards = append(cards, renderRowCard(row, cardWidth))
	}

	var lines []string
	for r := 0; r < gridRows; r++ {
		var rowCards []string
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			if idx < len(cards) {
				rowCards = append(rowCards, cards[idx])
			}
		}
		if len(rowCards) > 0 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
		}
	}

	return strings.Join(lines, "\n")
}

// renderRowCard renders a single location card
func renderRowCard(row engine.Row, width int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Align(lipgloss.Center).
		Width(width).
		PaddingTop(1).
		PaddingBottom(1)

	timeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Align(lipgloss.Center).
		Width(width).
		MarginBottom(1)

	dateStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center).
		Width(width)

	deltaStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Align(lipgloss.Center).
		Width(width).
		PaddingBottom(1)

	errStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Align(lipgloss.Center).
		Width(width).
		PaddingBottom(1)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 2).
		Margin(1, 1, 0, 1) // Top, Right, Bottom, Left margins

	name := strings.ToUpper(row.Name)
	if row.DarkKnown {
		if row.Dark {
			name = "☾ " + name
		} else {
			name = "☀ " + name
		}
	}
	title := titleStyle.Render(name)

	if row.Err != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			errStyle.Render("time unavailable"),
		)
		return cardStyle.Render(content)
	}

	delta := "local reference"
	if row.DeltaText != "" {
		delta = "Δ " + row.DeltaText
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		timeStyle.Render(row.TimeText),
		dateStyle.Render(fmt.Sprintf("%s - %s", row.DateText, row.OffsetText)),
		deltaStyle.Render(delta),
	)

	return cardStyle.Render(content)
}

// calculateColumns determines the number of columns based on terminal
// width and the widest card content
func calculateColumns(rows []engine.Row, width int) int {
	maxContentLen := 0
	for _, row := range rows {
		// The delta line is usually the widest: "Δ 9h 30m ahead of Mexico City"
		n := len(row.DeltaText) + 2
		if len(row.Name) > n {
			n = len(row.Name)
		}
		if n > maxContentLen {
			maxContentLen = n
		}
	}

	// The date line is typically ~24 chars: "2025-12-03 - UTC+01:00"
	minContentWidth := maxContentLen
	if minContentWidth < 24 {
		minContentWidth = 24
	}

	// Border (2), padding (4), margins (2)
	minCardWidth := minContentWidth + 8

	if width >= minCardWidth*4 {
		return 4
	}
	if width >= minCardWidth*2 {
		return 2
	}
	return 1
}

// modeFor maps settings to the formatting mode.
func modeFor(s *config.Settings) format.Mode {
	if s.TwelveHour {
		return format.Mode12
	}
	return format.Mode24
}

func main() {
	os.Exit(runMain())
}

// runMain wires everything up and runs the UI. Using a return code keeps
// deferred cleanup (log file, driver) running; os.Exit in main would not.
func runMain() int {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	closeLogs := setupLogging(settings.Debug)
	defer closeLogs()

	slog.Info("starting up", "component", "main", "tick_seconds", settings.TickSeconds)

	// City database loads in the background; the add flow waits on it
	cityDB := geonames.NewDatabase()
	cityDB.LoadAsync()

	reg := registry.New()
	eng := engine.New(reg, daynight.NewClassifier())
	eng.SetMode(modeFor(settings))
	eng.SetDayNight(settings.DayNight)

	ti := textinput.New()
	ti.Placeholder = "Search city..."
	ti.CharLimit = 50
	ti.Width = 50

	m := model{
		settings:       settings,
		reg:            reg,
		eng:            eng,
		cityDB:         cityDB,
		state:          viewMain,
		searchInput:    ti,
		deleteSelected: make(map[int]bool),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// The driver owns the tick cadence; completed ticks land in the UI as
	// messages. Overlapping ticks are skipped inside the driver.
	driver := engine.NewDriver(eng, time.Duration(settings.TickSeconds)*time.Second, func(rows []engine.Row) {
		p.Send(rowsMsg(rows))
	})
	driver.Start()
	defer driver.Stop()

	if _, err := p.Run(); err != nil {
		slog.Error("program failed", "component", "main", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}

	slog.Info("shutting down", "component", "main", "ticks_skipped", driver.Skipped())
	return 0
}

// setupLogging sends slog output to a rotated file in the cache dir. The
// returned func flushes and closes the writer.
func setupLogging(debug bool) func() {
	logPath, err := config.LogPath()
	if err != nil {
		// No usable cache dir; keep the default stderr handler
		return func() {}
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	return func() { _ = writer.Close() }
}
