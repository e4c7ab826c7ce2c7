package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoInteraction is returned when removing a ledger row that does not exist.
var ErrNoInteraction = errors.New("interaction not found")

type InteractionRepository interface {
	RecordPost(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, bool, error)
	RemovePost(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, error)
	RecordCommentLike(ctx context.Context, userID, commentID string) (*model.Comment, bool, error)
	RemoveCommentLike(ctx context.Context, userID, commentID string) (*model.Comment, error)
	FindUserStates(ctx context.Context, userID, targetType string, targetIDs []string) (map[string]model.InteractionState, error)
	FindRecent(ctx context.Context, limit int) ([]model.Interaction, error)
	FindKindTimes(ctx context.Context, kind model.InteractionKind, from, to time.Time) ([]time.Time, error)
	Recount(ctx context.Context) (RecountResult, error)
}

// RecountResult reports how many rows Recount rewrote.
type RecountResult struct {
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
}

type interactionRepository struct {
	db    *gorm.DB
	cache cache
}

func NewInteractionRepository(db *gorm.DB, redis *util.RedisClient) InteractionRepository {
	return &interactionRepository{
		db:    db,
		cache: cache{redis: redis},
	}
}

func increment(column string) clause.Expr {
	return gorm.Expr(column + " + 1")
}

// decrement never takes a counter below zero.
func decrement(column string) clause.Expr {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %s > 0 THEN %s - 1 ELSE 0 END", column, column))
}

// RecordPost inserts a ledger row and moves the post's counters in the same
// transaction. The bool is false when the row already existed. Drafts are
// reported as gorm.ErrRecordNotFound.
func (r *interactionRepository) RecordPost(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, bool, error) {
	var post model.Post
	recorded := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "slug").Where("id = ? AND published = ?", postID, true).First(&post).Error; err != nil {
			return err
		}

		if opposite, ok := kind.Opposite(); ok {
			res := tx.Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, opposite).
				Delete(&model.Interaction{})
			if res.Error != nil {
				return fmt.Errorf("delete %s: %w", opposite, res.Error)
			}
			if res.RowsAffected > 0 {
				col := opposite.CounterColumn()
				if err := tx.Model(&model.Post{}).Where("id = ?", postID).UpdateColumn(col, decrement(col)).Error; err != nil {
					return fmt.Errorf("decrement %s: %w", col, err)
				}
			}
		}

		row := &model.Interaction{UserID: userID, PostID: &postID, Kind: kind}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return fmt.Errorf("insert %s: %w", kind, res.Error)
		}
		if res.RowsAffected > 0 {
			recorded = true
			col := kind.CounterColumn()
			if err := tx.Model(&model.Post{}).Where("id = ?", postID).UpdateColumn(col, increment(col)).Error; err != nil {
				return fmt.Errorf("increment %s: %w", col, err)
			}
		}

		return tx.Select("id", "slug", "likes", "dislikes", "shares", "views").Where("id = ?", postID).First(&post).Error
	})
	if err != nil {
		return model.Counters{}, false, err
	}

	r.cache.invalidatePost(ctx, post.ID, post.Slug)
	if recorded {
		r.cache.invalidateTrending(ctx)
	}
	return post.Counters(), recorded, nil
}

// RemovePost deletes a ledger row and decrements the matching counter.
func (r *interactionRepository) RemovePost(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, error) {
	var post model.Post

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "slug").Where("id = ?", postID).First(&post).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).Delete(&model.Interaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoInteraction
		}

		col := kind.CounterColumn()
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).UpdateColumn(col, decrement(col)).Error; err != nil {
			return fmt.Errorf("decrement %s: %w", col, err)
		}

		return tx.Select("id", "slug", "likes", "dislikes", "shares", "views").Where("id = ?", postID).First(&post).Error
	})
	if err != nil {
		return model.Counters{}, err
	}

	r.cache.invalidatePost(ctx, post.ID, post.Slug)
	r.cache.invalidateTrending(ctx)
	return post.Counters(), nil
}

// RecordCommentLike likes a comment once per user. Comments under a draft
// are reported as gorm.ErrRecordNotFound.
func (r *interactionRepository) RecordCommentLike(ctx context.Context, userID, commentID string) (*model.Comment, bool, error) {
	var comment model.Comment
	recorded := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Select("comments.id", "comments.post_id").
			Joins("JOIN posts ON posts.id = comments.post_id AND posts.published = ?", true).
			Where("comments.id = ?", commentID).
			First(&comment).Error
		if err != nil {
			return err
		}

		row := &model.Interaction{UserID: userID, CommentID: &commentID, Kind: model.KindLike}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return fmt.Errorf("insert like: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			recorded = true
			if err := tx.Model(&model.Comment{}).Where("id = ?", commentID).UpdateColumn("likes", increment("likes")).Error; err != nil {
				return fmt.Errorf("increment likes: %w", err)
			}
		}

		return tx.Select("id", "post_id", "likes").Where("id = ?", commentID).First(&comment).Error
	})
	if err != nil {
		return nil, false, err
	}

	r.cache.invalidateComments(ctx, comment.PostID)
	return &comment, recorded, nil
}

// RemoveCommentLike takes back a comment like.
func (r *interactionRepository) RemoveCommentLike(ctx context.Context, userID, commentID string) (*model.Comment, error) {
	var comment model.Comment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "post_id").Where("id = ?", commentID).First(&comment).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND comment_id = ? AND kind = ?", userID, commentID, model.KindLike).Delete(&model.Interaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoInteraction
		}

		if err := tx.Model(&model.Comment{}).Where("id = ?", commentID).UpdateColumn("likes", decrement("likes")).Error; err != nil {
			return fmt.Errorf("decrement likes: %w", err)
		}

		return tx.Select("id", "post_id", "likes").Where("id = ?", commentID).First(&comment).Error
	})
	if err != nil {
		return nil, err
	}

	r.cache.invalidateComments(ctx, comment.PostID)
	return &comment, nil
}

// FindUserStates returns the user's like/dislike state for each target in
// one query. Targets without rows are absent from the map.
func (r *interactionRepository) FindUserStates(ctx context.Context, userID, targetType string, targetIDs []string) (map[string]model.InteractionState, error) {
	states := make(map[string]model.InteractionState)
	if userID == "" || len(targetIDs) == 0 {
		return states, nil
	}

	column := "post_id"
	switch targetType {
	case model.TargetTypePost:
	case model.TargetTypeComment:
		column = "comment_id"
	default:
		return nil, fmt.Errorf("unknown target type %q", targetType)
	}

	var rows []model.Interaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind IN ?", userID, []model.InteractionKind{model.KindLike, model.KindDislike}).
		Where(column+" IN ?", targetIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		id := row.PostID
		if targetType == model.TargetTypeComment {
			id = row.CommentID
		}
		if id == nil {
			continue
		}
		st := states[*id]
		switch row.Kind {
		case model.KindLike:
			st.Liked = true
		case model.KindDislike:
			st.Disliked = true
		case model.KindView, model.KindShare:
		}
		states[*id] = st
	}
	return states, nil
}

// FindRecent returns the latest ledger rows with their user and target.
func (r *interactionRepository) FindRecent(ctx context.Context, limit int) ([]model.Interaction, error) {
	var rows []model.Interaction
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Post").Preload("Comment").Preload("Comment.Post").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// FindKindTimes returns creation times of ledger rows of one kind in [from, to).
func (r *interactionRepository) FindKindTimes(ctx context.Context, kind model.InteractionKind, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("kind = ? AND created_at >= ? AND created_at < ?", kind, from, to).
		Pluck("created_at", &times).Error
	return times, err
}

// Recount rebuilds every denormalized counter from the ledger.
func (r *interactionRepository) Recount(ctx context.Context) (RecountResult, error) {
	var result RecountResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		countOf := func(target, kind string) string {
			return fmt.Sprintf("(SELECT COUNT(*) FROM interactions WHERE interactions.%s = %ss.id AND interactions.kind = '%s')", target+"_id", target, kind)
		}

		res := tx.Exec("UPDATE posts SET likes = " + countOf("post", "like") +
			", dislikes = " + countOf("post", "dislike") +
			", shares = " + countOf("post", "share") +
			", views = " + countOf("post", "view"))
		if res.Error != nil {
			return fmt.Errorf("recount posts: %w", res.Error)
		}
		result.Posts = res.RowsAffected

		res = tx.Exec("UPDATE comments SET likes = " + countOf("comment", "like"))
		if res.Error != nil {
			return fmt.Errorf("recount comments: %w", res.Error)
		}
		result.Comments = res.RowsAffected
		return nil
	})
	if err != nil {
		return RecountResult{}, err
	}

	r.cache.delPattern(ctx, postCachePrefix+"*")
	r.cache.delPattern(ctx, commentByPostPrefix+"*")
	r.cache.invalidateTrending(ctx)
	return result, nil
}
