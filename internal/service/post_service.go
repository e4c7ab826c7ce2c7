package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"gorm.io/gorm"
)

const wordsPerMinute = 200

// PostView is a post as returned to clients. The viewer flags are nil for
// anonymous viewers.
type PostView struct {
	model.Post
	Author       *model.Author `json:"author"`
	UserLiked    *bool         `json:"userLiked,omitempty"`
	UserDisliked *bool         `json:"userDisliked,omitempty"`
}

type PostRequest struct {
	Title     string `json:"title" binding:"required" yaml:"title"`
	Slug      string `json:"slug" binding:"omitempty,slug" yaml:"slug"`
	Excerpt   string `json:"excerpt" yaml:"excerpt"`
	Content   string `json:"content" binding:"required" yaml:"content"`
	Image     string `json:"image" yaml:"image"`
	Category  string `json:"category" yaml:"category"`
	ReadTime  string `json:"readTime" yaml:"readTime"`
	Published *bool  `json:"published" yaml:"published"`
}

type PostService interface {
	ListPosts(ctx context.Context, filter repository.PostFilter, viewerID string) ([]PostView, error)
	GetPost(ctx context.Context, id string, viewer Actor) (*PostView, error)
	GetPostBySlug(ctx context.Context, slug string, viewer Actor) (*PostView, error)
	Trending(ctx context.Context, limit int, viewerID string) ([]PostView, error)
	CreatePost(ctx context.Context, actor Actor, req PostRequest) (*PostView, error)
	UpdatePost(ctx context.Context, actor Actor, id string, req PostRequest) (*PostView, error)
	DeletePost(ctx context.Context, actor Actor, id string) error
}

type postService struct {
	postRepo     repository.PostRepository
	interactions InteractionService
}

func NewPostService(postRepo repository.PostRepository, interactions InteractionService) PostService {
	return &postService{
		postRepo:     postRepo,
		interactions: interactions,
	}
}

func (s *postService) ListPosts(ctx context.Context, filter repository.PostFilter, viewerID string) ([]PostView, error) {
	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, Internal("failed to list posts", err)
	}
	return s.annotate(ctx, posts, viewerID)
}

// GetPost returns one post. For a signed-in viewer of a published post it
// also records a view, which the ledger counts once per user.
func (s *postService) GetPost(ctx context.Context, id string, viewer Actor) (*PostView, error) {
	if !isID(id) {
		return nil, NotFound("Post not found")
	}
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "failed to load post")
	}
	return s.present(ctx, post, viewer)
}

func (s *postService) GetPostBySlug(ctx context.Context, slug string, viewer Actor) (*PostView, error) {
	post, err := s.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "failed to load post")
	}
	return s.present(ctx, post, viewer)
}

func (s *postService) Trending(ctx context.Context, limit int, viewerID string) ([]PostView, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	posts, err := s.postRepo.Trending(ctx, limit)
	if err != nil {
		return nil, Internal("failed to load trending posts", err)
	}
	return s.annotate(ctx, posts, viewerID)
}

func (s *postService) CreatePost(ctx context.Context, actor Actor, req PostRequest) (*PostView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	post := &model.Post{AuthorID: actor.UserID}
	if err := applyPostRequest(post, req); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.FindBySlug(ctx, post.Slug); err == nil {
		return nil, Conflict("A post with this slug already exists")
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("A post with this slug already exists")
		}
		return nil, Internal("failed to create post", err)
	}

	created, err := s.postRepo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, Internal("failed to load post", err)
	}
	return &PostView{Post: *created, Author: model.AuthorOf(created.Author)}, nil
}

func (s *postService) UpdatePost(ctx context.Context, actor Actor, id string, req PostRequest) (*PostView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !isID(id) {
		return nil, NotFound("Post not found")
	}

	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "failed to load post")
	}

	if err := applyPostRequest(post, req); err != nil {
		return nil, err
	}

	if existing, err := s.postRepo.FindBySlug(ctx, post.Slug); err == nil && existing.ID != post.ID {
		return nil, Conflict("A post with this slug already exists")
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("A post with this slug already exists")
		}
		return nil, notFoundOr(err, "Post not found", "failed to update post")
	}

	updated, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("failed to load post", err)
	}
	return &PostView{Post: *updated, Author: model.AuthorOf(updated.Author)}, nil
}

// DeletePost removes the post, its comments and all related ledger rows.
func (s *postService) DeletePost(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !isID(id) {
		return NotFound("Post not found")
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Post not found", "failed to delete post")
	}
	return nil
}

func (s *postService) present(ctx context.Context, post *model.Post, viewer Actor) (*PostView, error) {
	if !post.Published && !viewer.IsAdmin() {
		return nil, NotFound("Post not found")
	}

	view := &PostView{Post: *post, Author: model.AuthorOf(post.Author)}
	if viewer.UserID == "" {
		return view, nil
	}

	// Drafts take no engagement, so an admin preview is not a view.
	if post.Published {
		counters, err := s.interactions.RecordPostInteraction(ctx, viewer.UserID, post.ID, model.KindView)
		if err != nil {
			return nil, err
		}
		view.Likes, view.Dislikes, view.Shares, view.Views = counters.Likes, counters.Dislikes, counters.Shares, counters.Views
	}

	states, err := s.interactions.GetUserInteractionState(ctx, viewer.UserID, model.TargetTypePost, []string{post.ID})
	if err != nil {
		return nil, err
	}
	st := states[post.ID]
	view.UserLiked = boolPtr(st.Liked)
	view.UserDisliked = boolPtr(st.Disliked)
	return view, nil
}

func (s *postService) annotate(ctx context.Context, posts []model.Post, viewerID string) ([]PostView, error) {
	var states map[string]model.InteractionState
	if viewerID != "" && len(posts) > 0 {
		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		var err error
		states, err = s.interactions.GetUserInteractionState(ctx, viewerID, model.TargetTypePost, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		v := PostView{Post: p, Author: model.AuthorOf(p.Author)}
		if viewerID != "" {
			st := states[p.ID]
			v.UserLiked = boolPtr(st.Liked)
			v.UserDisliked = boolPtr(st.Disliked)
		}
		views = append(views, v)
	}
	return views, nil
}

func applyPostRequest(post *model.Post, req PostRequest) error {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return Validation("Missing required fields")
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = util.Slugify(title)
	}
	if !util.IsSlug(slug) {
		return Validation("Invalid slug")
	}

	post.Title = title
	post.Slug = slug
	post.Excerpt = strings.TrimSpace(req.Excerpt)
	post.Content = content
	post.Image = req.Image
	post.Category = strings.TrimSpace(req.Category)
	post.ReadTime = req.ReadTime
	if post.ReadTime == "" {
		post.ReadTime = estimateReadTime(content)
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	return nil
}

func estimateReadTime(content string) string {
	minutes := (len(strings.Fields(content)) + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func requireAdmin(actor Actor) error {
	if actor.UserID == "" {
		return Unauthorized("Unauthorized")
	}
	if !actor.IsAdmin() {
		return Forbidden("Forbidden")
	}
	return nil
}
