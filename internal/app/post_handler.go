package app

import (
	"net/http"
	"strconv"

	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// ListPosts returns posts newest-first. Non-admins only see published posts.
// GET /api/posts?published=&category=
func (h *PostHandler) ListPosts(c *gin.Context) {
	actor := actorFrom(c)
	filter := repository.PostFilter{Category: c.Query("category")}

	if raw := c.Query("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			util.BadRequest(c, "Invalid published filter")
			return
		}
		filter.Published = &published
	}
	if !actor.IsAdmin() {
		published := true
		filter.Published = &published
	}

	posts, err := h.postService.ListPosts(c.Request.Context(), filter, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"posts": posts})
}

// GetPost returns one post and records a view for signed-in viewers
// GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"post": post})
}

// GetPostBySlug
// GET /api/posts/slug/:slug
func (h *PostHandler) GetPostBySlug(c *gin.Context) {
	post, err := h.postService.GetPostBySlug(c.Request.Context(), c.Param("slug"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"post": post})
}

// Trending returns the highest scoring posts
// GET /api/posts/trending?limit=
func (h *PostHandler) Trending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	posts, err := h.postService.Trending(c.Request.Context(), limit, c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "", gin.H{"posts": posts})
}

// CreatePost
// POST /api/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req service.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusCreated, "Post created successfully", gin.H{"post": post})
}

// UpdatePost
// PUT /api/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req service.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Post updated successfully", gin.H{"post": post})
}

// DeletePost removes the post with its comments and interactions
// DELETE /api/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Post deleted successfully", nil)
}
