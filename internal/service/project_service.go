package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/store"
)

// ProjectService handles the project lifecycle and progress reporting.
type ProjectService struct {
	store  store.Store
	logger zerolog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(st store.Store, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		store:  st,
		logger: logger.With().Str("service", "project").Logger(),
	}
}

// ProjectSummary is a project together with its computed completion state.
type ProjectSummary struct {
	Project           *domain.Project
	Progress          float64
	SubtasksCompleted int
	SubtasksTotal     int
}

// ListWithProgress returns all projects with completion percentages.
func (s *ProjectService) ListWithProgress(ctx context.Context) ([]ProjectSummary, error) {
	projects, err := s.store.GetAllProjects(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list projects")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		total, completed := p.SubtaskCounts()
		summaries = append(summaries, ProjectSummary{
			Project:           p,
			Progress:          p.Progress(),
			SubtasksCompleted: completed,
			SubtasksTotal:     total,
		})
	}
	return summaries, nil
}

// CreateInput contains the fields for creating a project.
type CreateInput struct {
	Name     string
	Template string
}

// Create creates a new project from the given template.
func (s *ProjectService) Create(ctx context.Context, input CreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrProjectNameEmpty
	}

	project := domain.NewProject(name, input.Template)
	if err := s.store.SaveProject(ctx, project); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to save project")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("name", project.Name).
		Str("template", project.Template).
		Msg("project created")

	return project, nil
}

// Get retrieves a single project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to get project")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return project, nil
}

// Save persists a full project document, for example after the structure
// tree was edited.
func (s *ProjectService) Save(ctx context.Context, project *domain.Project) error {
	if strings.TrimSpace(project.Name) == "" {
		return domain.ErrProjectNameEmpty
	}
	if err := s.store.SaveProject(ctx, project); err != nil {
		s.logger.Error().Err(err).Str("project_id", project.ID).Msg("failed to save project")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}

// Delete removes a project. It returns domain.ErrProjectNotFound when no
// project with the given ID exists.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteProject(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to delete project")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !deleted {
		return domain.ErrProjectNotFound
	}

	s.logger.Info().Str("project_id", id).Msg("project deleted")
	return nil
}
