package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"gorm.io/gorm"
)

// PostFilter narrows List. Nil fields do not filter.
type PostFilter struct {
	Published *bool
	Category  string
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	List(ctx context.Context, filter PostFilter) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	Trending(ctx context.Context, limit int) ([]model.Post, error)
}

type postRepository struct {
	db    *gorm.DB
	cache cache
}

func NewPostRepository(db *gorm.DB, redis *util.RedisClient) PostRepository {
	return &postRepository{
		db:    db,
		cache: cache{redis: redis},
	}
}

// Create creates a new post
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	r.cache.invalidateTrending(ctx)
	return nil
}

// FindByID finds a post with its author, reading through the cache
func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if r.cache.get(ctx, postCachePrefix+id, &post) {
		return &post, nil
	}

	err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}

	r.cache.set(ctx, postCachePrefix+id, &post, postCacheExpiration)
	return &post, nil
}

// FindBySlug finds a post by slug, reading through the cache
func (r *postRepository) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	if r.cache.get(ctx, postBySlugCachePrefix+slug, &post) {
		return &post, nil
	}

	err := r.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}

	r.cache.set(ctx, postBySlugCachePrefix+slug, &post, postCacheExpiration)
	return &post, nil
}

// List returns posts newest-first
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]model.Post, error) {
	query := r.db.WithContext(ctx).Preload("Author")
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var posts []model.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Update writes the editable fields. Counters are owned by the ledger and
// never written here.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	var previous model.Post
	if err := r.db.WithContext(ctx).Select("id", "slug").Where("id = ?", post.ID).First(&previous).Error; err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"title":     post.Title,
		"slug":      post.Slug,
		"excerpt":   post.Excerpt,
		"content":   post.Content,
		"image":     post.Image,
		"category":  post.Category,
		"read_time": post.ReadTime,
		"published": post.Published,
	}).Error
	if err != nil {
		return err
	}

	r.cache.invalidatePost(ctx, post.ID, previous.Slug)
	r.cache.del(ctx, postBySlugCachePrefix+post.Slug)
	r.cache.invalidateTrending(ctx)
	return nil
}

// Delete removes the post together with its comments and every ledger row
// pointing at the post or one of its comments.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	var post model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "slug").Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}

		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("post_id = ? OR comment_id IN (?)", id, commentIDs).Delete(&model.Interaction{}).Error; err != nil {
			return fmt.Errorf("delete interactions: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return tx.Delete(&model.Post{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	r.cache.invalidatePost(ctx, id, post.Slug)
	r.cache.invalidateComments(ctx, id)
	r.cache.invalidateTrending(ctx)
	return nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// Trending returns published posts ordered by likes, then views, then
// recency. Each page size is cached until a counter or post changes.
func (r *postRepository) Trending(ctx context.Context, limit int) ([]model.Post, error) {
	key := fmt.Sprintf("%s%d", trendingCachePrefix, limit)

	var posts []model.Post
	if r.cache.get(ctx, key, &posts) {
		return posts, nil
	}

	err := r.db.WithContext(ctx).Preload("Author").
		Where("published = ?", true).
		Order("likes DESC, views DESC, created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	r.cache.set(ctx, key, posts, trendingExpiration)
	return posts, nil
}
