package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// StatusInput is the input schema for the status tool.
type StatusInput struct {
	Document string `json:"document,omitempty" jsonschema:"document name such as story/VOICE_01.xml; empty for every document"`
}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Done      int              `json:"done"`
	Total     int              `json:"total"`
}

// DocumentOutput is the progress of one document.
type DocumentOutput struct {
	Name   string         `json:"name"`
	Counts map[string]int `json:"counts"`
	Done   int            `json:"done"`
	Total  int            `json:"total"`
}

// PendingInput is the input schema for the pending tool.
type PendingInput struct {
	Document string `json:"document" jsonschema:"document name such as story/VOICE_01.xml"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of entries to return (default 50)"`
}

// PendingOutput is the output schema for the pending tool.
type PendingOutput struct {
	Entries []EntryOutput `json:"entries"`
	Count   int           `json:"count"`
	Total   int           `json:"total"`
}

// EntryOutput is one document entry.
type EntryOutput struct {
	ID         int    `json:"id"`
	Status     string `json:"status"`
	Speaker    string `json:"speaker,omitempty"`
	Source     string `json:"source"`
	Translated string `json:"translated,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// ValidateInput is the input schema for the validate tool.
type ValidateInput struct {
	Stages []string `json:"stages,omitempty" jsonschema:"statuses inserted besides Done: Editing, Proofreading or Problematic"`
}

// ValidateOutput is the output schema for the validate tool.
type ValidateOutput struct {
	OK       bool     `json:"ok"`
	Checked  int      `json:"checked"`
	Warnings []string `json:"warnings,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

// registerTools registers the tool handlers the ports can serve.
func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "status",
		Description: "Translation progress per document, counted by workflow status",
	}, s.handleStatus)

	addTool(s, &mcp.Tool{
		Name:        "pending",
		Description: "Entries of a document that are not Done yet, with source text and current translation",
	}, s.handlePending)

	if s.ports.Validator != nil {
		addTool(s, &mcp.Tool{
			Name:        "validate",
			Description: "Encode and place every translation without writing game files, reporting what would fail",
		}, s.handleValidate)
	}
}

func addTool[In, Out any](s *Server, t *mcp.Tool, h mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.server, t, h)
	s.tools = append(s.tools, t.Name)
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	docs, err := s.ports.Status.Status(ctx, "")
	if err != nil {
		return nil, StatusOutput{}, err
	}

	output := StatusOutput{Documents: []DocumentOutput{}}
	for _, d := range docs {
		name := displayName(d.Path)
		if input.Document != "" && name != input.Document {
			continue
		}
		out := documentOutput(d)
		output.Documents = append(output.Documents, out)
		output.Done += out.Done
		output.Total += out.Total
	}
	if input.Document != "" && len(output.Documents) == 0 {
		return nil, StatusOutput{}, fmt.Errorf("%w: %s", errUnknownDocument, input.Document)
	}
	return nil, output, nil
}

func (s *Server) handlePending(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PendingInput,
) (*mcp.CallToolResult, PendingOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	doc, err := s.loadDocument(ctx, input.Document)
	if err != nil {
		return nil, PendingOutput{}, err
	}

	output := PendingOutput{Entries: []EntryOutput{}}
	for _, e := range entryOutputs(doc) {
		if e.Status == string(domain.StatusDone) {
			continue
		}
		output.Total++
		if len(output.Entries) < limit {
			output.Entries = append(output.Entries, e)
		}
	}
	output.Count = len(output.Entries)
	return nil, output, nil
}

func (s *Server) handleValidate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	stages := make([]domain.Status, 0, len(input.Stages))
	for _, raw := range input.Stages {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, ValidateOutput{}, err
		}
		stages = append(stages, st)
	}

	report, err := s.ports.Validator.Validate(ctx, driving.InsertOptions{Stages: stages})
	if report == nil {
		if err == nil {
			err = errors.New("validation returned no report")
		}
		return nil, ValidateOutput{}, err
	}

	output := ValidateOutput{
		OK:      len(report.Failures) == 0,
		Checked: len(report.Processed),
	}
	for _, d := range report.Diagnostics {
		output.Warnings = append(output.Warnings, d.String())
	}
	for _, f := range report.Failures {
		output.Failures = append(output.Failures, f.String())
	}
	return nil, output, nil
}

func documentOutput(d driving.DocumentStatus) DocumentOutput {
	counts := make(map[string]int, len(d.Counts))
	for st, n := range d.Counts {
		counts[string(st)] = n
	}
	return DocumentOutput{
		Name:   displayName(d.Path),
		Counts: counts,
		Done:   d.Counts[domain.StatusDone],
		Total:  d.Total(),
	}
}

// entryOutputs lists speakers first, then strings, in document order.
func entryOutputs(doc *domain.TextDocument) []EntryOutput {
	out := make([]EntryOutput, 0, len(doc.Speakers)+len(doc.Strings))
	for _, sp := range doc.Speakers {
		out = append(out, EntryOutput{
			ID:         sp.ID,
			Status:     string(sp.Status),
			Speaker:    "(speaker)",
			Source:     sp.SourceText,
			Translated: sp.TranslatedText,
			Notes:      sp.Notes,
		})
	}
	for _, e := range doc.Strings {
		entry := EntryOutput{
			ID:         e.ID,
			Status:     string(e.Status),
			Source:     e.SourceText,
			Translated: e.TranslatedText,
			Notes:      e.Notes,
		}
		if e.SpeakerID != nil {
			if sp, ok := doc.Speaker(*e.SpeakerID); ok {
				entry.Speaker = sp.SourceText
			}
		}
		out = append(out, entry)
	}
	return out
}
