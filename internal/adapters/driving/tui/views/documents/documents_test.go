package documents

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// MockStatusReporter implements driving.StatusReporter for testing.
type MockStatusReporter struct {
	StatusFunc   func(ctx context.Context, path string) ([]driving.DocumentStatus, error)
	DocumentFunc func(ctx context.Context, path string) (*domain.TextDocument, error)
}

func (m *MockStatusReporter) Status(ctx context.Context, path string) ([]driving.DocumentStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, path)
	}
	return nil, nil
}

func (m *MockStatusReporter) Document(ctx context.Context, path string) (*domain.TextDocument, error) {
	if m.DocumentFunc != nil {
		return m.DocumentFunc(ctx, path)
	}
	return nil, domain.ErrNotFound
}

func sampleDocuments() []driving.DocumentStatus {
	return []driving.DocumentStatus{
		{Path: "/p/2_translated/story/VOICE_01.xml", Counts: map[domain.Status]int{domain.StatusDone: 2, domain.StatusToDo: 2}},
		{Path: "/p/2_translated/story/VOICE_02.xml", Counts: map[domain.Status]int{domain.StatusToDo: 5}},
		{Path: "/p/2_translated/menu/arm9.xml", Counts: map[domain.Status]int{domain.StatusDone: 3}},
	}
}

func newLoadedView(t *testing.T) *View {
	t.Helper()
	view := NewView(context.Background(), nil, nil, nil)
	view.SetDimensions(100, 30)
	view.Update(messages.StatusLoaded{Documents: sampleDocuments()})
	return view
}

func TestNewView_NilParams(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keys)
	assert.False(t, view.ready)
	assert.Empty(t, view.documents)
}

func TestView_Init_LoadsStatus(t *testing.T) {
	mock := &MockStatusReporter{
		StatusFunc: func(_ context.Context, path string) ([]driving.DocumentStatus, error) {
			assert.Empty(t, path)
			return sampleDocuments(), nil
		},
	}
	view := NewView(context.Background(), nil, nil, mock)

	cmd := view.Init()
	require.NotNil(t, cmd)
	assert.True(t, view.loading)

	loaded, ok := cmd().(messages.StatusLoaded)
	require.True(t, ok)
	assert.Len(t, loaded.Documents, 3)

	view.Update(loaded)
	assert.False(t, view.loading)
	assert.Len(t, view.Documents(), 3)
}

func TestView_Init_NoService(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)

	loaded, ok := view.Init()().(messages.StatusLoaded)

	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_Update_StatusLoaded_Error(t *testing.T) {
	view := newLoadedView(t)

	view.Update(messages.StatusLoaded{Err: errors.New("failed")})

	assert.Error(t, view.Err())
	assert.Len(t, view.Documents(), 3, "keeps the previous list")
	assert.Contains(t, view.View(), "Error: failed")
}

func TestView_Update_StatusLoaded_ClampsSelection(t *testing.T) {
	view := newLoadedView(t)
	view.selected = 2

	view.Update(messages.StatusLoaded{Documents: sampleDocuments()[:1]})

	assert.Equal(t, 0, view.SelectedIndex())
}

func TestView_Update_KeyMsg_Navigation(t *testing.T) {
	view := newLoadedView(t)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.SelectedIndex())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, view.SelectedIndex())

	// Should not go past last
	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, view.SelectedIndex())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, view.SelectedIndex())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, view.SelectedIndex())

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.SelectedIndex())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.Equal(t, 2, view.SelectedIndex())
}

func TestView_Update_KeyMsg_Select(t *testing.T) {
	view := newLoadedView(t)
	view.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "/p/2_translated/story/VOICE_02.xml", selected.Path)
}

func TestView_Update_KeyMsg_SelectEmpty(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Nil(t, view.SelectedDocument())
}

func TestView_Update_KeyMsg_Refresh(t *testing.T) {
	calls := 0
	mock := &MockStatusReporter{
		StatusFunc: func(context.Context, string) ([]driving.DocumentStatus, error) {
			calls++
			return nil, nil
		},
	}
	view := NewView(context.Background(), nil, nil, mock)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, calls)
}

func TestView_Update_KeyMsg_HelpAndQuit(t *testing.T) {
	view := newLoadedView(t)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}

func TestView_Scroll(t *testing.T) {
	view := newLoadedView(t)
	view.SetDimensions(100, 9) // two visible rows

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})

	assert.Equal(t, 1, view.scrollOffset)
	out := view.View()
	assert.NotContains(t, out, "VOICE_01.xml")
	assert.Contains(t, out, "[2-3 of 3]")
}

func TestView_View(t *testing.T) {
	view := newLoadedView(t)

	out := view.View()

	assert.Contains(t, out, "Documents (3)")
	assert.Contains(t, out, "story/VOICE_01.xml")
	assert.Contains(t, out, "menu/arm9.xml")
	assert.Contains(t, out, "2/4")
	assert.Contains(t, out, "3/3")
	assert.Contains(t, out, "[enter] open")
}

func TestView_View_Empty(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)
	view.Update(messages.StatusLoaded{})

	assert.Contains(t, view.View(), "No documents.")
}
