package service

import (
	"context"
	"errors"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"gorm.io/gorm"
)

type ProjectRequest struct {
	Title           string   `json:"title" binding:"required" yaml:"title"`
	Slug            string   `json:"slug" binding:"omitempty,slug" yaml:"slug"`
	Description     string   `json:"description" binding:"required" yaml:"description"`
	FullDescription string   `json:"fullDescription" yaml:"fullDescription"`
	Image           string   `json:"image" yaml:"image"`
	Gallery         []string `json:"gallery" binding:"omitempty,dive,url" yaml:"gallery"`
	Tags            []string `json:"tags" yaml:"tags"`
	Github          string   `json:"github" binding:"omitempty,url" yaml:"github"`
	Demo            string   `json:"demo" binding:"omitempty,url" yaml:"demo"`
	Featured        bool     `json:"featured" yaml:"featured"`
}

type ProjectService interface {
	ListProjects(ctx context.Context, featured *bool) ([]model.Project, error)
	GetProject(ctx context.Context, slug string) (*model.Project, error)
	CreateProject(ctx context.Context, actor Actor, req ProjectRequest) (*model.Project, error)
	UpdateProject(ctx context.Context, actor Actor, id string, req ProjectRequest) (*model.Project, error)
	DeleteProject(ctx context.Context, actor Actor, id string) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
}

func NewProjectService(projectRepo repository.ProjectRepository) ProjectService {
	return &projectService{projectRepo: projectRepo}
}

func (s *projectService) ListProjects(ctx context.Context, featured *bool) ([]model.Project, error) {
	projects, err := s.projectRepo.List(ctx, featured)
	if err != nil {
		return nil, Internal("failed to list projects", err)
	}
	return projects, nil
}

func (s *projectService) GetProject(ctx context.Context, slug string) (*model.Project, error) {
	project, err := s.projectRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "Project not found", "failed to load project")
	}
	return project, nil
}

func (s *projectService) CreateProject(ctx context.Context, actor Actor, req ProjectRequest) (*model.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	project := &model.Project{}
	if err := applyProjectRequest(project, req); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindBySlug(ctx, project.Slug); err == nil {
		return nil, Conflict("A project with this slug already exists")
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("A project with this slug already exists")
		}
		return nil, Internal("failed to create project", err)
	}
	return project, nil
}

func (s *projectService) UpdateProject(ctx context.Context, actor Actor, id string, req ProjectRequest) (*model.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !isID(id) {
		return nil, NotFound("Project not found")
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Project not found", "failed to load project")
	}
	if err := applyProjectRequest(project, req); err != nil {
		return nil, err
	}

	if existing, err := s.projectRepo.FindBySlug(ctx, project.Slug); err == nil && existing.ID != project.ID {
		return nil, Conflict("A project with this slug already exists")
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("A project with this slug already exists")
		}
		return nil, notFoundOr(err, "Project not found", "failed to update project")
	}
	return project, nil
}

func (s *projectService) DeleteProject(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !isID(id) {
		return NotFound("Project not found")
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Project not found", "failed to delete project")
	}
	return nil
}

func applyProjectRequest(project *model.Project, req ProjectRequest) error {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return Validation("Missing required fields")
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = util.Slugify(title)
	}
	if !util.IsSlug(slug) {
		return Validation("Invalid slug")
	}

	project.Title = title
	project.Slug = slug
	project.Description = description
	project.FullDescription = req.FullDescription
	project.Image = req.Image
	project.Gallery = model.StringList(req.Gallery)
	project.Tags = model.StringList(req.Tags)
	project.Github = req.Github
	project.Demo = req.Demo
	project.Featured = req.Featured
	return nil
}
