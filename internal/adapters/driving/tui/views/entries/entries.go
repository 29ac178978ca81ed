// Package entries provides the view of one document's entries for the TUI.
package entries

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

// View is a read-only, scrollable rendering of a document.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	status driving.StatusReporter

	path         string
	document     *domain.TextDocument
	pendingOnly  bool
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates a new entries view.
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

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument switches to the document at path and loads it.
func (v *View) SetDocument(path string) tea.Cmd {
	v.path = path
	v.document = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	v.loading = true
	status, ctx, path := v.status, v.ctx, v.path
	return func() tea.Msg {
		if status == nil {
			return messages.DocumentLoaded{Path: path, Err: errors.New("status service not available")}
		}
		doc, err := status.Document(ctx, path)
		return messages.DocumentLoaded{Path: path, Document: doc, Err: err}
	}
}

// Update handles messages for the entries view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentLoaded:
		if msg.Path != v.path {
			// a reply for a document the user already left
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.document = msg.Document
		v.err = nil
		v.layout()
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
		v.scrollTo(v.scrollOffset - 1)
	case keymap.Matches(k, v.keys.Down):
		v.scrollTo(v.scrollOffset + 1)
	case keymap.Matches(k, v.keys.PageUp):
		v.scrollTo(v.scrollOffset - v.visibleLines())
	case keymap.Matches(k, v.keys.PageDown):
		v.scrollTo(v.scrollOffset + v.visibleLines())
	case keymap.Matches(k, v.keys.Top):
		v.scrollTo(0)
	case keymap.Matches(k, v.keys.Bottom):
		v.scrollTo(v.maxScrollOffset())
	case keymap.Matches(k, v.keys.Pending):
		v.pendingOnly = !v.pendingOnly
		v.scrollOffset = 0
		v.layout()
	case keymap.Matches(k, v.keys.Refresh):
		return v, v.load()
	case keymap.Matches(k, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	case keymap.Matches(k, v.keys.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(k, v.keys.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

func (v *View) scrollTo(offset int) {
	v.scrollOffset = max(min(offset, v.maxScrollOffset()), 0)
}

// layout renders the document into wrapped lines.
func (v *View) layout() {
	v.lines = nil
	if v.document == nil {
		return
	}
	width := max(v.width-4, 20)

	for _, s := range v.document.Speakers {
		if v.pendingOnly && s.Status == domain.StatusDone {
			continue
		}
		v.lines = append(v.lines, v.header(fmt.Sprintf("speaker %d", s.ID), s.Status, ""))
		v.lines = append(v.lines, v.body(s.SourceText, s.TranslatedText, width)...)
	}
	for _, e := range v.document.Strings {
		if v.pendingOnly && e.Status == domain.StatusDone {
			continue
		}
		v.lines = append(v.lines, v.header(fmt.Sprintf("#%d", e.ID), e.Status, v.speakerName(e)))
		v.lines = append(v.lines, v.body(e.SourceText, e.TranslatedText, width)...)
	}
	v.scrollTo(v.scrollOffset)
}

func (v *View) header(label string, st domain.Status, speaker string) string {
	h := v.styles.Subtitle.Render(label) + " " + v.styles.Status(st)
	if speaker != "" {
		h += " " + v.styles.Muted.Render(speaker)
	}
	return h
}

func (v *View) body(source, translated string, width int) []string {
	var out []string
	for _, l := range wrap(source, width) {
		out = append(out, "  "+v.styles.Normal.Render(l))
	}
	if translated != "" {
		for _, l := range wrap(translated, width) {
			out = append(out, "  "+v.styles.Muted.Render("→ ")+v.styles.Normal.Render(l))
		}
	}
	return append(out, "")
}

// speakerName prefers the translated speaker name.
func (v *View) speakerName(e domain.TextEntry) string {
	if e.SpeakerID == nil {
		return ""
	}
	s, ok := v.document.Speaker(*e.SpeakerID)
	if !ok {
		return ""
	}
	if s.TranslatedText != "" {
		return s.TranslatedText
	}
	return s.SourceText
}

// wrap splits text on newlines and breaks lines longer than width runes.
func wrap(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		r := []rune(line)
		for len(r) > width {
			out = append(out, string(r[:width]))
			r = r[width:]
		}
		out = append(out, string(r))
	}
	return out
}

func (v *View) visibleLines() int {
	// title, separator, scroll position and help
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the entries view.
func (v *View) View() string {
	var b strings.Builder

	title := filepath.Base(v.path)
	if v.pendingOnly {
		title += " (pending)"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.loading && v.document == nil:
		b.WriteString(v.styles.Muted.Render("Loading document..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.lines) == 0 && v.pendingOnly:
		b.WriteString(v.styles.Muted.Render("Every entry is done."))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No entries)"))
	default:
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		b.WriteString(strings.Join(v.lines[v.scrollOffset:end], "\n"))
		if len(v.lines) > visible {
			percentage := v.scrollOffset * 100 / max(v.maxScrollOffset(), 1)
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
				percentage, v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.EntriesHelp())))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// Path returns the path of the open document.
func (v *View) Path() string {
	return v.path
}

// Document returns the loaded document.
func (v *View) Document() *domain.TextDocument {
	return v.document
}

// PendingOnly reports whether Done entries are hidden.
func (v *View) PendingOnly() bool {
	return v.pendingOnly
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
