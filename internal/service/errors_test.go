package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("post not found")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestNotFoundOr(t *testing.T) {
	err := notFoundOr(fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "post not found", "failed")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "not_found: post not found", err.Error())

	cause := errors.New("connection refused")
	err = notFoundOr(cause, "post not found", "failed to load post")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestIsID(t *testing.T) {
	assert.True(t, isID("6f1c2a9e-3b7d-4c1e-9a55-0d2f4b8e7c11"))
	assert.False(t, isID("not-a-uuid"))
	assert.False(t, isID(""))
	assert.False(t, isID("{6f1c2a9e-3b7d-4c1e-9a55-0d2f4b8e7c11}"))
	assert.False(t, isID("urn:uuid:6f1c2a9e-3b7d-4c1e-9a55-0d2f4b8e7c11"))

	assert.Equal(t, []string{"6f1c2a9e-3b7d-4c1e-9a55-0d2f4b8e7c11"},
		validIDs([]string{"x", "6f1c2a9e-3b7d-4c1e-9a55-0d2f4b8e7c11", ""}))
}
