package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"gorm.io/gorm"
)

// CommentThread holds every comment of one post: top-level comments
// newest-first and all replies oldest-first.
type CommentThread struct {
	TopLevel []model.Comment `json:"topLevel"`
	Replies  []model.Comment `json:"replies"`
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	FindThread(ctx context.Context, postID string) (*CommentThread, error)
	UpdateContent(ctx context.Context, comment *model.Comment) error
	DeleteWithReplies(ctx context.Context, id string) ([]string, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type commentRepository struct {
	db    *gorm.DB
	cache cache
}

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{
		db:    db,
		cache: cache{redis: redis},
	}
}

// Create creates a new comment and invalidates the post's thread cache
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	r.cache.invalidateComments(ctx, comment.PostID)
	return nil
}

// FindByID finds a comment with its author and post
func (r *commentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Preload("Author").Preload("Post").
		Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindThread loads all comments of a post in two queries
func (r *commentRepository) FindThread(ctx context.Context, postID string) (*CommentThread, error) {
	key := commentByPostPrefix + postID
	var thread CommentThread
	if r.cache.get(ctx, key, &thread) {
		return &thread, nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Find(&thread.TopLevel).Error; err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	if len(thread.TopLevel) > 0 {
		if err := db.Preload("Author").
			Where("post_id = ? AND parent_id IS NOT NULL", postID).
			Order("created_at ASC").
			Find(&thread.Replies).Error; err != nil {
			return nil, fmt.Errorf("load replies: %w", err)
		}
	}

	r.cache.set(ctx, key, &thread, commentCacheExpiration)
	return &thread, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Model(comment).Update("content", comment.Content).Error; err != nil {
		return err
	}
	r.cache.invalidateComments(ctx, comment.PostID)
	return nil
}

// DeleteWithReplies removes a comment, its direct replies and every ledger
// row that references any of them. It returns the deleted ids.
func (r *commentRepository) DeleteWithReplies(ctx context.Context, id string) ([]string, error) {
	var comment model.Comment
	var ids []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "post_id").Where("id = ?", id).First(&comment).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Comment{}).Where("parent_id = ?", id).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("collect replies: %w", err)
		}
		ids = append([]string{id}, ids...)

		if err := tx.Where("comment_id IN ?", ids).Delete(&model.Interaction{}).Error; err != nil {
			return fmt.Errorf("delete interactions: %w", err)
		}
		return tx.Where("id IN ?", ids).Delete(&model.Comment{}).Error
	})
	if err != nil {
		return nil, err
	}

	r.cache.invalidateComments(ctx, comment.PostID)
	return ids, nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Count(&count).Error
	return count, err
}

func (r *commentRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}
