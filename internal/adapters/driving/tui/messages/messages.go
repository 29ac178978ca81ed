// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewDocuments lists every document with its progress.
	ViewDocuments ViewType = iota
	// ViewEntries shows the entries of one document.
	ViewEntries
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDocuments:
		return "documents"
	case ViewEntries:
		return "entries"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// StatusLoaded carries the progress of every document.
type StatusLoaded struct {
	Documents []driving.DocumentStatus
	Err       error
}

// DocumentSelected is sent when a document is picked from the list.
type DocumentSelected struct {
	Path string
}

// DocumentLoaded carries a document read for the entries view.
type DocumentLoaded struct {
	Path     string
	Document *domain.TextDocument
	Err      error
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}

// Quit requests the application to exit.
type Quit struct{}
