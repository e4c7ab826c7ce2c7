package app

import (
	"errors"
	"io"
	"net/http"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
)

type interactionRequest struct {
	Type string `json:"type"`
}

type InteractionHandler struct {
	interactionService service.InteractionService
}

func NewInteractionHandler(interactionService service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService}
}

// RecordPost handles like, dislike, view and share on a post
// POST /api/posts/:id/interactions
func (h *InteractionHandler) RecordPost(c *gin.Context) {
	kind, ok := h.kindFromBody(c)
	if !ok {
		return
	}

	counters, err := h.interactionService.RecordPostInteraction(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Interaction recorded", countersBody(counters))
}

// RemovePost handles removing a like or dislike from a post
// DELETE /api/posts/:id/interactions
func (h *InteractionHandler) RemovePost(c *gin.Context) {
	kind, ok := h.kindFromBody(c)
	if !ok {
		return
	}

	counters, err := h.interactionService.RemovePostInteraction(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Interaction removed", countersBody(counters))
}

// LikeComment handles liking a comment. Comments only accept likes.
// POST /api/comments/:id/interactions
func (h *InteractionHandler) LikeComment(c *gin.Context) {
	kind, ok := h.kindFromBody(c)
	if !ok {
		return
	}
	if kind != model.KindLike {
		util.BadRequest(c, "Invalid interaction type for comments")
		return
	}

	likes, err := h.interactionService.RecordCommentLike(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Comment liked", gin.H{"likes": likes})
}

// UnlikeComment handles removing a like from a comment
// DELETE /api/comments/:id/interactions
func (h *InteractionHandler) UnlikeComment(c *gin.Context) {
	likes, err := h.interactionService.RemoveCommentLike(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Comment unliked", gin.H{"likes": likes})
}

// kindFromBody reads {"type": ...}. An empty body yields an invalid type.
func (h *InteractionHandler) kindFromBody(c *gin.Context) (model.InteractionKind, bool) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(c, "Invalid request body")
		return "", false
	}

	kind, err := service.ParseInteractionKind(req.Type)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return kind, true
}

func countersBody(counters model.Counters) gin.H {
	return gin.H{
		"likes":    counters.Likes,
		"dislikes": counters.Dislikes,
		"shares":   counters.Shares,
		"views":    counters.Views,
	}
}
