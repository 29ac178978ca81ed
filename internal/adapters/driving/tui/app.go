package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/views/entries"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ctx    context.Context
	ports  *Ports
	styles *styles.Styles
	keys   *keymap.KeyMap

	documentsView *documents.View
	entriesView   *entries.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is where the help view returns to.
	previousView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ctx context.Context, ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()

	return &App{
		ctx:           ctx,
		ports:         ports,
		styles:        s,
		keys:          keys,
		documentsView: documents.NewView(ctx, s, keys, ports.Status),
		entriesView:   entries.NewView(ctx, s, keys, ports.Status),
		currentView:   messages.ViewDocuments,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("scenetext"),
		a.documentsView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// ctrl+c quits from anywhere
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewEntries:
			a.entriesView, cmd = a.entriesView.Update(msg)
		case messages.ViewHelp:
			switch {
			case keymap.Matches(msg.String(), a.keys.Quit):
				return a, tea.Quit
			case keymap.Matches(msg.String(), a.keys.Back), keymap.Matches(msg.String(), a.keys.Help):
				a.currentView = a.previousView
			}
		}
		return a, cmd

	case messages.ViewChanged:
		if msg.View == messages.ViewHelp {
			a.previousView = a.currentView
		}
		a.currentView = msg.View
		if msg.View == messages.ViewDocuments {
			// progress may have changed while a document was open
			return a, a.documentsView.Reload()
		}
		return a, nil

	case messages.StatusLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.currentView = messages.ViewEntries
		return a, a.entriesView.SetDocument(msg.Path)

	case messages.DocumentLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.entriesView, cmd = a.entriesView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewEntries:
			a.entriesView, cmd = a.entriesView.Update(msg)
		case messages.ViewHelp:
			// Help view doesn't handle error messages
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewEntries:
		return a.entriesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.documentsView.View()
	}
}

func (a *App) viewHelp() string {
	out := a.styles.Title.Render("Help") + "\n\n"
	for _, group := range a.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			out += fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc)
		}
		out += "\n"
	}
	return out + a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.documentsView.SetDimensions(width, height)
	a.entriesView.SetDimensions(width, height)
}
