package service

import (
	"context"
	"errors"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
)

// InteractionService maintains the engagement ledger and its counters.
type InteractionService interface {
	RecordPostInteraction(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, error)
	RemovePostInteraction(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, error)
	RecordCommentLike(ctx context.Context, userID, commentID string) (int64, error)
	RemoveCommentLike(ctx context.Context, userID, commentID string) (int64, error)
	GetUserInteractionState(ctx context.Context, userID, targetType string, targetIDs []string) (map[string]model.InteractionState, error)
}

type interactionService struct {
	interactionRepo repository.InteractionRepository
	activity        ActivityService
}

func NewInteractionService(interactionRepo repository.InteractionRepository, activity ActivityService) InteractionService {
	return &interactionService{
		interactionRepo: interactionRepo,
		activity:        activity,
	}
}

// ParseInteractionKind validates a client-supplied type.
func ParseInteractionKind(s string) (model.InteractionKind, error) {
	kind := model.InteractionKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", Validation("Invalid interaction type")
	}
	return kind, nil
}

// RecordPostInteraction records like, dislike, view or share. Repeating an
// interaction succeeds without moving any counter.
func (s *interactionService) RecordPostInteraction(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, error) {
	if userID == "" {
		return model.Counters{}, Unauthorized("Unauthorized")
	}
	if !kind.Valid() {
		return model.Counters{}, Validation("Invalid interaction type")
	}
	if postID == "" {
		return model.Counters{}, Validation("Post ID is required")
	}
	if !isID(postID) {
		return model.Counters{}, NotFound("Post not found")
	}

	counters, recorded, err := s.interactionRepo.RecordPost(ctx, userID, postID, kind)
	if err != nil {
		return model.Counters{}, notFoundOr(err, "Post not found", "failed to record interaction")
	}

	if recorded {
		s.publish(ctx, model.ActivityInteraction, userID, kind, postID, "", &counters)
	}
	return counters, nil
}

// RemovePostInteraction takes back a like or dislike.
func (s *interactionService) RemovePostInteraction(ctx context.Context, userID, postID string, kind model.InteractionKind) (model.Counters, error) {
	if userID == "" {
		return model.Counters{}, Unauthorized("Unauthorized")
	}
	if !kind.Removable() {
		return model.Counters{}, Validation("Invalid interaction type")
	}
	if !isID(postID) {
		return model.Counters{}, NotFound("Post not found")
	}

	counters, err := s.interactionRepo.RemovePost(ctx, userID, postID, kind)
	if errors.Is(err, repository.ErrNoInteraction) {
		return model.Counters{}, NotFound("Post not " + kind.Verb())
	}
	if err != nil {
		return model.Counters{}, notFoundOr(err, "Post not found", "failed to remove interaction")
	}

	s.publish(ctx, model.ActivityInteractionRemove, userID, kind, postID, "", &counters)
	return counters, nil
}

// RecordCommentLike likes a comment; repeating it is a no-op.
func (s *interactionService) RecordCommentLike(ctx context.Context, userID, commentID string) (int64, error) {
	if userID == "" {
		return 0, Unauthorized("Unauthorized")
	}
	if !isID(commentID) {
		return 0, NotFound("Comment not found")
	}

	comment, recorded, err := s.interactionRepo.RecordCommentLike(ctx, userID, commentID)
	if err != nil {
		return 0, notFoundOr(err, "Comment not found", "failed to like comment")
	}

	if recorded {
		s.publish(ctx, model.ActivityInteraction, userID, model.KindLike, comment.PostID, comment.ID, &model.Counters{Likes: comment.Likes})
	}
	return comment.Likes, nil
}

// RemoveCommentLike takes back a comment like.
func (s *interactionService) RemoveCommentLike(ctx context.Context, userID, commentID string) (int64, error) {
	if userID == "" {
		return 0, Unauthorized("Unauthorized")
	}
	if !isID(commentID) {
		return 0, NotFound("Comment not found")
	}

	comment, err := s.interactionRepo.RemoveCommentLike(ctx, userID, commentID)
	if errors.Is(err, repository.ErrNoInteraction) {
		return 0, NotFound("Comment not liked")
	}
	if err != nil {
		return 0, notFoundOr(err, "Comment not found", "failed to unlike comment")
	}

	s.publish(ctx, model.ActivityInteractionRemove, userID, model.KindLike, comment.PostID, comment.ID, &model.Counters{Likes: comment.Likes})
	return comment.Likes, nil
}

// GetUserInteractionState is the bulk lookup used to annotate lists.
func (s *interactionService) GetUserInteractionState(ctx context.Context, userID, targetType string, targetIDs []string) (map[string]model.InteractionState, error) {
	if targetType != model.TargetTypePost && targetType != model.TargetTypeComment {
		return nil, Validation("Invalid target type")
	}
	states, err := s.interactionRepo.FindUserStates(ctx, userID, targetType, validIDs(targetIDs))
	if err != nil {
		return nil, Internal("failed to load interaction state", err)
	}
	return states, nil
}

func (s *interactionService) publish(ctx context.Context, typ, userID string, kind model.InteractionKind, postID, commentID string, counters *model.Counters) {
	if s.activity == nil {
		return
	}
	action := kind.Verb()
	if typ == model.ActivityInteractionRemove {
		action = "un" + action
	}
	s.activity.Publish(ctx, model.Activity{
		Type:      typ,
		UserID:    userID,
		Action:    action,
		PostID:    postID,
		CommentID: commentID,
		Counters:  counters,
	})
}
