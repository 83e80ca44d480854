package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/problem"
)

// PathDocument is the persisted form of one planning result
type PathDocument struct {
	SessionID   string      `json:"session_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Found       bool        `json:"found"`
	Approximate bool        `json:"approximate"`
	Difference  float64     `json:"difference"`
	Path        [][]float64 `json:"path"`
}

// NewPathDocument builds a document from a solved problem definition.
func NewPathDocument(sessionID string, def *problem.Definition, achieved bool) *PathDocument {
	doc := &PathDocument{
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
		Found:     achieved,
	}
	// An unsolved definition reports +Inf, which JSON cannot encode.
	if diff := def.Difference(); !math.IsInf(diff, 1) {
		doc.Difference = diff
	}
	if path, approximate := def.SolutionPath(); path != nil {
		doc.Approximate = approximate
		doc.Path = make([][]float64, path.Len())
		for i, s := range path.States {
			doc.Path[i] = append([]float64(nil), s...)
		}
	}
	return doc
}

// PathStore reads and writes path documents through a BlobClient
type PathStore struct {
	blobClient BlobClient
	logger     *zap.Logger
}

// NewPathStore creates a path store
func NewPathStore(blobClient BlobClient, logger *zap.Logger) *PathStore {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &PathStore{
		blobClient: blobClient,
		logger:     logger,
	}
}

// PathBlobPath returns the standard blob path for a planning session's result
func PathBlobPath(sessionID string) string {
	return fmt.Sprintf("paths/%s/path.json", sessionID)
}

// SavePath marshals and uploads a path document, returning the blob URL.
func (s *PathStore) SavePath(ctx context.Context, doc *PathDocument) (string, error) {
	if s.blobClient == nil {
		return "", fmt.Errorf("blob client not initialized")
	}
	if doc == nil || doc.SessionID == "" {
		return "", fmt.Errorf("path document requires a session id")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal path document: %w", err)
	}

	blobPath := PathBlobPath(doc.SessionID)
	s.logger.Debug("Saving path document",
		zap.String("session_id", doc.SessionID),
		zap.String("blob_path", blobPath),
		zap.Int("path_states", len(doc.Path)))

	url, err := s.blobClient.Upload(ctx, blobPath, data, map[string]string{
		"session_id": doc.SessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save path document: %w", err)
	}
	return url, nil
}

// LoadPath downloads and unmarshals the path document for a session.
func (s *PathStore) LoadPath(ctx context.Context, sessionID string) (*PathDocument, error) {
	if s.blobClient == nil {
		return nil, fmt.Errorf("blob client not initialized")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	data, err := s.blobClient.Download(ctx, PathBlobPath(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to load path document: %w", err)
	}

	var doc PathDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal path document: %w", err)
	}
	return &doc, nil
}
