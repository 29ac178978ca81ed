// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

const barWidth = 20

// View lists every document with its translation progress.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	status driving.StatusReporter

	documents    []driving.DocumentStatus
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates a new documents view.
func NewView(ctx context.Context, s *styles.Styles, keys *keymap.KeyMap, status driving.StatusReporter) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if keys == nil {
		keys = keymap.DefaultKeyMap()
	}
	return &View{
		ctx:    ctx,
		styles: s,
		keys:   keys,
		status: status,
	}
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload returns a command that reads the progress of every document.
func (v *View) Reload() tea.Cmd {
	v.loading = true
	status, ctx := v.status, v.ctx
	return func() tea.Msg {
		if status == nil {
			return messages.StatusLoaded{Err: errors.New("status service not available")}
		}
		docs, err := status.Status(ctx, "")
		return messages.StatusLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatusLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.documents = msg.Documents
		v.err = nil
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.clampScroll()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keys.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keys.Top):
		v.selected = 0
	case keymap.Matches(k, v.keys.Bottom):
		v.selected = max(len(v.documents)-1, 0)
	case keymap.Matches(k, v.keys.Select):
		if doc := v.SelectedDocument(); doc != nil {
			path := doc.Path
			return v, func() tea.Msg {
				return messages.DocumentSelected{Path: path}
			}
		}
	case keymap.Matches(k, v.keys.Refresh):
		return v, v.Reload()
	case keymap.Matches(k, v.keys.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(k, v.keys.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	v.clampScroll()
	return v, nil
}

// clampScroll keeps the selection inside the visible window.
func (v *View) clampScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	}
	if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, header, scroll indicator and help
	return max(v.height-7, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents. Run 'scenetext extract story' first."))
	default:
		b.WriteString(v.renderList())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.DocumentsHelp())))
	return b.String()
}

func (v *View) renderList() string {
	var b strings.Builder
	nameWidth := v.nameWidth()

	visible := v.visibleItemCount()
	end := min(v.scrollOffset+visible, len(v.documents))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderDocument(i, nameWidth))
		b.WriteString("\n")
	}

	if len(v.documents) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) renderDocument(index, nameWidth int) string {
	doc := v.documents[index]
	name := displayName(doc.Path)
	if len(name) > nameWidth {
		name = name[:nameWidth-3] + "..."
	}
	done, total := doc.Counts[domain.StatusDone], doc.Total()
	counts := fmt.Sprintf("%d/%d", done, total)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %-11s", nameWidth, name, counts)) +
			" " + v.styles.Progress(done, total, barWidth)
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", nameWidth, name)) +
		v.styles.Muted.Render(fmt.Sprintf("%-11s", counts)) +
		" " + v.styles.Progress(done, total, barWidth)
}

func (v *View) nameWidth() int {
	w := 10
	for _, d := range v.documents {
		w = max(w, len(displayName(d.Path)))
	}
	// leave room for the counts and the bar
	return max(min(w, v.width-barWidth-18), 10)
}

// displayName shows a document as its section directory and file name.
func displayName(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.clampScroll()
}

// Documents returns the loaded documents.
func (v *View) Documents() []driving.DocumentStatus {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *driving.DocumentStatus {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
