package mcp

import (
	"context"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// mockStatusReporter is a mock implementation of driving.StatusReporter.
type mockStatusReporter struct {
	docs      []driving.DocumentStatus
	documents map[string]*domain.TextDocument
	err       error
}

func (m *mockStatusReporter) Status(_ context.Context, _ string) ([]driving.DocumentStatus, error) {
	return m.docs, m.err
}

func (m *mockStatusReporter) Document(_ context.Context, path string) (*domain.TextDocument, error) {
	doc, ok := m.documents[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// mockValidator is a mock implementation of driving.Validator.
type mockValidator struct {
	opts   driving.InsertOptions
	report *domain.Report
	err    error
}

func (m *mockValidator) Validate(_ context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	m.opts = opts
	return m.report, m.err
}

// mockRunHistory is a mock implementation of driving.RunHistory.
type mockRunHistory struct {
	runs  []domain.Run
	limit int
}

func (m *mockRunHistory) Runs(_ context.Context, limit int) ([]domain.Run, error) {
	m.limit = limit
	return m.runs, nil
}

const (
	storyPath = "/p/2_translated/story/VOICE_01.xml"
	menuPath  = "/p/2_translated/menu/arm9.xml"
)

// newStatusReporter returns a project with one story and one menu document.
func newStatusReporter() *mockStatusReporter {
	story := domain.NewTextDocument(domain.SectionStory)
	speaker := story.AddSpeaker(0x20, "アリス")
	story.Speakers[0].Status = domain.StatusDone
	story.AddText(domain.TextEntry{
		PointerOffsets: []int{0x24},
		SourceText:     "おはよう",
		TranslatedText: "Good morning",
		Status:         domain.StatusDone,
		SpeakerID:      &speaker,
	})
	story.AddText(domain.TextEntry{
		PointerOffsets: []int{0x28},
		SourceText:     "またね",
		TranslatedText: "See y",
		Status:         domain.StatusEditing,
		SpeakerID:      &speaker,
	})
	story.AddText(domain.TextEntry{PointerOffsets: []int{0x2C}, SourceText: "うん"})

	return &mockStatusReporter{
		docs: []driving.DocumentStatus{
			{Path: storyPath, Counts: story.Counts()},
			{Path: menuPath, Counts: map[domain.Status]int{domain.StatusToDo: 4}},
		},
		documents: map[string]*domain.TextDocument{storyPath: story},
	}
}
