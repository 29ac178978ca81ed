package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for scenetext resources.
	uriScheme = "scenetext://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Every story and menu document with its progress",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{section}/{name}",
		Name:        "document-entries",
		Description: "Speakers and strings of one document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	if s.ports.Runs != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "runs",
			Name:        "runs",
			Description: "Recent extract, insert and pack runs, newest first",
			MIMEType:    "application/json",
		}, s.handleRunsResource)
	}
}

func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Status.Status(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]DocumentOutput, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, documentOutput(d))
	}
	return jsonResult(req.Params.URI, infos)
}

func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractDocumentName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.loadDocument(ctx, name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, entryOutputs(doc))
}

func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Runs.Runs(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	type runInfo struct {
		ID         string `json:"id"`
		Kind       string `json:"kind"`
		Target     string `json:"target"`
		StartedAt  string `json:"started_at"`
		DurationMS int64  `json:"duration_ms"`
		Files      int    `json:"files"`
		Skipped    int    `json:"skipped"`
		Errors     int    `json:"errors"`
	}

	infos := make([]runInfo, len(runs))
	for i, r := range runs {
		infos[i] = runInfo{
			ID:         r.ID,
			Kind:       string(r.Kind),
			Target:     r.Target,
			StartedAt:  r.StartedAt.Format(time.RFC3339),
			DurationMS: r.Duration().Milliseconds(),
			Files:      r.Files,
			Skipped:    r.Skipped,
			Errors:     r.Errors,
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// loadDocument resolves a section/name pair to a document on disk.
func (s *Server) loadDocument(ctx context.Context, name string) (*domain.TextDocument, error) {
	docs, err := s.ports.Status.Status(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if displayName(d.Path) == name {
			return s.ports.Status.Document(ctx, d.Path)
		}
	}
	return nil, fmt.Errorf("%w: %s", errUnknownDocument, name)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// displayName names a document by its section directory and file name,
// e.g. story/VOICE_01.xml.
func displayName(path string) string {
	return filepath.ToSlash(filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}

// extractDocumentName extracts section/name from scenetext://documents/{section}/{name}.
func extractDocumentName(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Count(name, "/") != 1 || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return ""
	}
	return name
}
