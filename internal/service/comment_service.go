package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
)

const maxCommentLength = 5000

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// CommentView is a comment as returned to clients. The viewer flags are nil
// for anonymous viewers.
type CommentView struct {
	ID           string        `json:"id"`
	PostID       string        `json:"postId"`
	ParentID     *string       `json:"parentId,omitempty"`
	Content      string        `json:"content"`
	Likes        int64         `json:"likes"`
	Author       *model.Author `json:"author"`
	UserLiked    *bool         `json:"userLiked,omitempty"`
	UserDisliked *bool         `json:"userDisliked,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CommentThreadView is a top-level comment with its replies oldest-first.
type CommentThreadView struct {
	CommentView
	Replies []CommentView `json:"replies"`
}

// CommentDetail adds the parent post summary to a single comment.
type CommentDetail struct {
	CommentView
	Post *PostSummary `json:"post,omitempty"`
}

type PostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type CreateCommentRequest struct {
	PostID   string  `json:"postId"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type CommentService interface {
	ListComments(ctx context.Context, postID, viewerID string) ([]CommentThreadView, error)
	CreateComment(ctx context.Context, viewerID string, req CreateCommentRequest) (*CommentView, error)
	GetComment(ctx context.Context, commentID string) (*CommentDetail, error)
	UpdateComment(ctx context.Context, actor Actor, commentID string, req UpdateCommentRequest) (*CommentView, error)
	DeleteComment(ctx context.Context, actor Actor, commentID string) error
}

type commentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	interactions InteractionService
	activity     ActivityService
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	interactions InteractionService,
	activity ActivityService,
) CommentService {
	return &commentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		userRepo:     userRepo,
		interactions: interactions,
		activity:     activity,
	}
}

// ListComments returns the post's top-level comments newest-first, each
// with its replies oldest-first, annotated for viewerID when non-empty.
func (s *commentService) ListComments(ctx context.Context, postID, viewerID string) ([]CommentThreadView, error) {
	if postID == "" {
		return nil, Validation("Post ID is required")
	}
	if !isID(postID) {
		return []CommentThreadView{}, nil
	}

	thread, err := s.commentRepo.FindThread(ctx, postID)
	if err != nil {
		return nil, Internal("failed to load comments", err)
	}

	repliesByParent := make(map[string][]model.Comment, len(thread.TopLevel))
	for _, reply := range thread.Replies {
		if reply.ParentID != nil {
			repliesByParent[*reply.ParentID] = append(repliesByParent[*reply.ParentID], reply)
		}
	}

	var states map[string]model.InteractionState
	if viewerID != "" {
		ids := make([]string, 0, len(thread.TopLevel)+len(thread.Replies))
		for _, c := range thread.TopLevel {
			ids = append(ids, c.ID)
		}
		for _, c := range thread.Replies {
			ids = append(ids, c.ID)
		}
		states, err = s.interactions.GetUserInteractionState(ctx, viewerID, model.TargetTypeComment, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]CommentThreadView, 0, len(thread.TopLevel))
	for i := range thread.TopLevel {
		top := &thread.TopLevel[i]
		replies := repliesByParent[top.ID]
		tv := CommentThreadView{
			CommentView: toCommentView(top, viewerID, states),
			Replies:     make([]CommentView, 0, len(replies)),
		}
		for j := range replies {
			tv.Replies = append(tv.Replies, toCommentView(&replies[j], viewerID, states))
		}
		views = append(views, tv)
	}
	return views, nil
}

// CreateComment adds a comment or reply. A reply to a reply is attached to
// the top-level comment so threads stay two levels deep.
func (s *commentService) CreateComment(ctx context.Context, viewerID string, req CreateCommentRequest) (*CommentView, error) {
	if viewerID == "" {
		return nil, Unauthorized("Unauthorized")
	}

	content := strings.TrimSpace(req.Content)
	if req.PostID == "" || content == "" {
		return nil, Validation("Missing required fields")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, Validation("Comment is too long")
	}

	if !isID(req.PostID) {
		return nil, NotFound("Post not found")
	}
	post, err := s.postRepo.FindByID(ctx, req.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "failed to load post")
	}
	if !post.Published {
		return nil, NotFound("Post not found")
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		if !isID(*req.ParentID) {
			return nil, NotFound("Parent comment not found")
		}
		parent, err := s.commentRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, notFoundOr(err, "Parent comment not found", "failed to load parent comment")
		}
		if parent.PostID != req.PostID {
			return nil, Validation("Parent comment does not belong to this post")
		}
		rootID := parent.ID
		if parent.IsReply() {
			rootID = *parent.ParentID
		}
		parentID = &rootID
	}

	comment := &model.Comment{
		PostID:   req.PostID,
		AuthorID: viewerID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, Internal("failed to create comment", err)
	}

	if author, err := s.userRepo.FindByID(ctx, viewerID); err == nil {
		comment.Author = author
	}

	s.publish(ctx, model.ActivityCommentCreated, viewerID, "commented on", comment)

	view := toCommentView(comment, "", nil)
	return &view, nil
}

func (s *commentService) GetComment(ctx context.Context, commentID string) (*CommentDetail, error) {
	if !isID(commentID) {
		return nil, NotFound("Comment not found")
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "failed to load comment")
	}

	detail := &CommentDetail{CommentView: toCommentView(comment, "", nil)}
	if comment.Post != nil {
		detail.Post = &PostSummary{ID: comment.Post.ID, Title: comment.Post.Title, Slug: comment.Post.Slug}
	}
	return detail, nil
}

// UpdateComment edits the content. Only the author or an admin may edit.
func (s *commentService) UpdateComment(ctx context.Context, actor Actor, commentID string, req UpdateCommentRequest) (*CommentView, error) {
	if actor.UserID == "" {
		return nil, Unauthorized("Unauthorized")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, Validation("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, Validation("Comment is too long")
	}
	if !isID(commentID) {
		return nil, NotFound("Comment not found")
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "failed to load comment")
	}
	if comment.AuthorID != actor.UserID && !actor.IsAdmin() {
		return nil, Forbidden("Forbidden")
	}

	comment.Content = content
	if err := s.commentRepo.UpdateContent(ctx, comment); err != nil {
		return nil, Internal("failed to update comment", err)
	}

	view := toCommentView(comment, "", nil)
	return &view, nil
}

// DeleteComment removes the comment, its replies and their ledger rows.
// Only the author or an admin may delete.
func (s *commentService) DeleteComment(ctx context.Context, actor Actor, commentID string) error {
	if actor.UserID == "" {
		return Unauthorized("Unauthorized")
	}
	if !isID(commentID) {
		return NotFound("Comment not found")
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "Comment not found", "failed to load comment")
	}
	if comment.AuthorID != actor.UserID && !actor.IsAdmin() {
		return Forbidden("Forbidden")
	}

	if _, err := s.commentRepo.DeleteWithReplies(ctx, commentID); err != nil {
		return notFoundOr(err, "Comment not found", "failed to delete comment")
	}

	s.publish(ctx, model.ActivityCommentDeleted, actor.UserID, "deleted a comment on", comment)
	return nil
}

func (s *commentService) publish(ctx context.Context, typ, userID, action string, comment *model.Comment) {
	if s.activity == nil {
		return
	}
	s.activity.Publish(ctx, model.Activity{
		Type:      typ,
		UserID:    userID,
		Action:    action,
		PostID:    comment.PostID,
		CommentID: comment.ID,
	})
}

func toCommentView(c *model.Comment, viewerID string, states map[string]model.InteractionState) CommentView {
	view := CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		Likes:     c.Likes,
		Author:    model.AuthorOf(c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if viewerID != "" {
		st := states[c.ID]
		view.UserLiked = boolPtr(st.Liked)
		view.UserDisliked = boolPtr(st.Disliked)
	}
	return view
}

func boolPtr(b bool) *bool {
	return &b
}
