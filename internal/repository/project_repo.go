package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	FindBySlug(ctx context.Context, slug string) (*model.Project, error)
	List(ctx context.Context, featured *bool) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type projectRepository struct {
	db    *gorm.DB
	cache cache
}

func NewProjectRepository(db *gorm.DB, redis *util.RedisClient) ProjectRepository {
	return &projectRepository{
		db:    db,
		cache: cache{redis: redis},
	}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return err
	}
	r.invalidate(ctx, "")
	return nil
}

func (r *projectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	key := projectCachePrefix + slug
	var project model.Project
	if r.cache.get(ctx, key, &project) {
		return &project, nil
	}

	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, err
	}

	r.cache.set(ctx, key, &project, projectCacheExpiration)
	return &project, nil
}

// List returns projects newest-first, optionally filtered by featured flag
func (r *projectRepository) List(ctx context.Context, featured *bool) ([]model.Project, error) {
	key := projectListCacheKey + "all"
	if featured != nil {
		key = projectListCacheKey + strconv.FormatBool(*featured)
	}

	var projects []model.Project
	if r.cache.get(ctx, key, &projects) {
		return projects, nil
	}

	query := r.db.WithContext(ctx)
	if featured != nil {
		query = query.Where("featured = ?", *featured)
	}
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	r.cache.set(ctx, key, projects, projectCacheExpiration)
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	var previous model.Project
	if err := r.db.WithContext(ctx).Select("id", "slug").Where("id = ?", project.ID).First(&previous).Error; err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", project.ID).Updates(map[string]interface{}{
		"title":            project.Title,
		"slug":             project.Slug,
		"description":      project.Description,
		"full_description": project.FullDescription,
		"image":            project.Image,
		"gallery":          project.Gallery,
		"tags":             project.Tags,
		"github":           project.Github,
		"demo":             project.Demo,
		"featured":         project.Featured,
	}).Error
	if err != nil {
		return err
	}

	r.invalidate(ctx, previous.Slug)
	r.cache.del(ctx, projectCachePrefix+project.Slug)
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	var project model.Project
	if err := r.db.WithContext(ctx).Select("id", "slug").Where("id = ?", id).First(&project).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.invalidate(ctx, project.Slug)
	return nil
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).Count(&count).Error
	return count, err
}

func (r *projectRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *projectRepository) invalidate(ctx context.Context, slug string) {
	r.cache.delPattern(ctx, projectListCacheKey+"*")
	if slug != "" {
		r.cache.del(ctx, projectCachePrefix+slug)
	}
}
