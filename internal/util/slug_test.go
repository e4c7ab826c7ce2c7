package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Building a Go API!  ", "building-a-go-api"},
		{"Café Crème brûlée", "cafe-creme-brulee"},
		{"Next.js & React -- tips", "next-js-react-tips"},
		{"already-a-slug", "already-a-slug"},
		{"日本語", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("go-generics-101"))
	assert.False(t, IsSlug("Go Generics"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug("trailing-"))
}
