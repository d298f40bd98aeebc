// Package project implements project and account management: creation with
// public API keys, membership on user documents, and API-key authorization
// for event ingest.
package project

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/replaydeck/replaydeck/internal/store"
)

// ErrInvalidAPIKey is returned when no project matches a presented API key.
var ErrInvalidAPIKey = errors.New("invalid API key")

// ErrProjectNotFound is returned for unknown project IDs.
var ErrProjectNotFound = errors.New("project not found")

// Service manages projects and their owning users.
type Service struct {
	docs store.DocStore
	now  func() time.Time
}

// NewService creates a project service.
func NewService(docs store.DocStore) *Service {
	return &Service{docs: docs, now: time.Now}
}

// Create provisions a project with a fresh UUID and public API key and
// records it on the owning user's document.
func (s *Service) Create(ctx context.Context, name, userID string) (*store.Project, error) {
	apiKey, err := newPublicAPIKey()
	if err != nil {
		return nil, err
	}
	project := &store.Project{
		ID:           uuid.New().String(),
		Name:         name,
		CreatedAt:    s.now().Unix(),
		CreatedBy:    userID,
		PublicAPIKey: apiKey,
	}
	if err := s.docs.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if err := s.docs.AttachProject(ctx, userID, project.ID); err != nil {
		return nil, fmt.Errorf("failed to attach project to user %q: %w", userID, err)
	}
	return project, nil
}

// Get returns a project by ID.
func (s *Service) Get(ctx context.Context, projectID string) (*store.Project, error) {
	project, err := s.docs.GetProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %q: %w", projectID, err)
	}
	return project, nil
}

// List returns every project.
func (s *Service) List(ctx context.Context) ([]store.Project, error) {
	projects, err := s.docs.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListForUser returns the projects recorded on a user's document. Unknown
// users yield an empty list; dangling project references are skipped.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]store.Project, error) {
	user, err := s.docs.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return []store.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", userID, err)
	}

	projects := make([]store.Project, 0, len(user.Projects))
	for _, projectID := range user.Projects {
		project, err := s.docs.GetProject(ctx, projectID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get project %q: %w", projectID, err)
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// Authorize resolves the project owning a public API key.
func (s *Service) Authorize(ctx context.Context, apiKey string) (*store.Project, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	project, err := s.docs.GetProjectByAPIKey(ctx, apiKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidAPIKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}
	return project, nil
}

// SaveUser upserts an account document.
func (s *Service) SaveUser(ctx context.Context, user *store.User) error {
	if user.ID == "" {
		return errors.New("user ID is required")
	}
	if err := s.docs.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.ID, err)
	}
	return nil
}

// newPublicAPIKey generates a pk_-prefixed URL-safe key.
func newPublicAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return "pk_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
