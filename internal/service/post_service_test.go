package service_test

import (
	"context"
	"testing"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostService(t *testing.T) (*gorm.DB, service.PostService, service.InteractionService) {
	t.Helper()
	db := testutil.NewDB(t)
	postRepo := repository.NewPostRepository(db, nil)
	interactions := service.NewInteractionService(repository.NewInteractionRepository(db, nil), nil)
	return db, service.NewPostService(postRepo, interactions), interactions
}

func TestCreatePostDefaults(t *testing.T) {
	db, svc, _ := newPostService(t)
	admin := testutil.CreateUser(t, db, "Admin", model.RoleAdmin)
	actor := service.Actor{UserID: admin.ID, Role: model.RoleAdmin}
	published := true

	post, err := svc.CreatePost(context.Background(), actor, service.PostRequest{
		Title:     "Élan & Go Routines",
		Content:   "one two three",
		Published: &published,
	})
	require.NoError(t, err)
	assert.Equal(t, "elan-go-routines", post.Slug)
	assert.Equal(t, "1 min read", post.ReadTime)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Admin", post.Author.Name)

	_, err = svc.CreatePost(context.Background(), actor, service.PostRequest{Title: "Elan Go Routines", Content: "dup"})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	reader := testutil.CreateUser(t, db, "Reader", model.RoleUser)
	_, err = svc.CreatePost(context.Background(), service.Actor{UserID: reader.ID, Role: model.RoleUser}, service.PostRequest{Title: "x", Content: "y"})
	assert.Equal(t, service.KindForbidden, service.KindOf(err))

	_, err = svc.CreatePost(context.Background(), service.Actor{}, service.PostRequest{Title: "x", Content: "y"})
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))
}

func TestUnpublishedPostHiddenFromReaders(t *testing.T) {
	db, svc, _ := newPostService(t)
	admin := testutil.CreateUser(t, db, "Admin", model.RoleAdmin)
	reader := testutil.CreateUser(t, db, "Reader", model.RoleUser)
	actor := service.Actor{UserID: admin.ID, Role: model.RoleAdmin}

	draft, err := svc.CreatePost(context.Background(), actor, service.PostRequest{Title: "Draft", Content: "wip"})
	require.NoError(t, err)

	_, err = svc.GetPost(context.Background(), draft.ID, service.Actor{UserID: reader.ID, Role: model.RoleUser})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = svc.GetPostBySlug(context.Background(), "draft", service.Actor{})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	got, err := svc.GetPostBySlug(context.Background(), "draft", actor)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	assert.Zero(t, got.Views)
	require.NotNil(t, got.UserLiked)
	assert.False(t, *got.UserLiked)
}

func TestDeletePostCascades(t *testing.T) {
	db, svc, interactions := newPostService(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "Admin", model.RoleAdmin)
	post := testutil.CreatePost(t, db, admin.ID, "Doomed")
	other := testutil.CreatePost(t, db, admin.ID, "Survivor")
	comment := testutil.CreateComment(t, db, post.ID, admin.ID, nil, "bye", post.CreatedAt)

	_, err := interactions.RecordPostInteraction(ctx, admin.ID, post.ID, model.KindLike)
	require.NoError(t, err)
	_, err = interactions.RecordPostInteraction(ctx, admin.ID, other.ID, model.KindLike)
	require.NoError(t, err)
	_, err = interactions.RecordCommentLike(ctx, admin.ID, comment.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, service.Actor{UserID: admin.ID, Role: model.RoleAdmin}, post.ID))

	var n int64
	require.NoError(t, db.Model(&model.Interaction{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&model.Comment{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)

	err = svc.DeletePost(ctx, service.Actor{UserID: admin.ID, Role: model.RoleAdmin}, post.ID)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestListPostsAndTrending(t *testing.T) {
	db, svc, interactions := newPostService(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "Admin", model.RoleAdmin)
	reader := testutil.CreateUser(t, db, "Reader", model.RoleUser)
	quiet := testutil.CreatePost(t, db, admin.ID, "Quiet")
	loud := testutil.CreatePost(t, db, admin.ID, "Loud")

	_, err := interactions.RecordPostInteraction(ctx, reader.ID, loud.ID, model.KindLike)
	require.NoError(t, err)

	trending, err := svc.Trending(ctx, 5, reader.ID)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, loud.ID, trending[0].ID)
	require.NotNil(t, trending[0].UserLiked)
	assert.True(t, *trending[0].UserLiked)
	assert.Equal(t, quiet.ID, trending[1].ID)

	published := true
	list, err := svc.ListPosts(ctx, repository.PostFilter{Published: &published}, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Nil(t, list[0].UserLiked)
}
