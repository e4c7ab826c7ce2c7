package repository_test

import (
	"context"
	"testing"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/testutil"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *util.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := util.NewRedisClientFrom(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func postIDs(posts []model.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestTrendingWithCacheFollowsCounters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	mr, client := newRedis(t)
	posts := repository.NewPostRepository(db, client)
	ledger := repository.NewInteractionRepository(db, client)

	author := testutil.CreateUser(t, db, "Author", model.RoleAdmin)
	reader := testutil.CreateUser(t, db, "Reader", model.RoleUser)
	p1 := testutil.CreatePost(t, db, author.ID, "One")
	p2 := testutil.CreatePost(t, db, author.ID, "Two")
	p3 := testutil.CreatePost(t, db, author.ID, "Three")

	_, _, err := ledger.RecordPost(ctx, reader.ID, p3.ID, model.KindView)
	require.NoError(t, err)

	got, err := posts.Trending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, p3.ID, got[0].ID)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID, p3.ID}, postIDs(got))
	assert.True(t, mr.Exists("trending:posts:5"))

	// A like outranks a view.
	_, _, err = ledger.RecordPost(ctx, reader.ID, p1.ID, model.KindLike)
	require.NoError(t, err)
	assert.False(t, mr.Exists("trending:posts:5"))

	got, err = posts.Trending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{p1.ID, p3.ID}, postIDs(got)[:2])

	_, err = ledger.RemovePost(ctx, reader.ID, p1.ID, model.KindLike)
	require.NoError(t, err)

	got, err = posts.Trending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, p3.ID, got[0].ID)

	// Counters edited behind the ledger's back are repaired by Recount,
	// which also drops every cached page.
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", p2.ID).UpdateColumn("likes", 10).Error)
	_, err = ledger.Recount(ctx)
	require.NoError(t, err)
	assert.False(t, mr.Exists("trending:posts:2"))

	got, err = posts.Trending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, p3.ID, got[0].ID)
	assert.Zero(t, got[0].Likes)
	assert.EqualValues(t, 1, got[0].Views)
}

func TestTrendingSkipsDrafts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	_, client := newRedis(t)
	posts := repository.NewPostRepository(db, client)

	author := testutil.CreateUser(t, db, "Author", model.RoleAdmin)
	live := testutil.CreatePost(t, db, author.ID, "Live")
	draft := &model.Post{Title: "Draft", Slug: "draft", Content: "wip", AuthorID: author.ID}
	require.NoError(t, posts.Create(ctx, draft))

	got, err := posts.Trending(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{live.ID}, postIDs(got))
}

func TestProfileUpdateDropsAuthorCaches(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	mr, client := newRedis(t)
	posts := repository.NewPostRepository(db, client)
	comments := repository.NewCommentRepository(db, client)
	users := repository.NewUserRepository(db, client)

	author := testutil.CreateUser(t, db, "Author", model.RoleAdmin)
	post := testutil.CreatePost(t, db, author.ID, "Cached")

	_, err := posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	_, err = posts.FindBySlug(ctx, post.Slug)
	require.NoError(t, err)
	_, err = comments.FindThread(ctx, post.ID)
	require.NoError(t, err)
	_, err = posts.Trending(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys())

	author.Name = "Renamed"
	require.NoError(t, users.Update(ctx, author))
	assert.Empty(t, mr.Keys())

	got, err := posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Renamed", got.Author.Name)
}
