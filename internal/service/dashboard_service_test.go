package service

import (
	"context"
	"testing"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	postRepo := repository.NewPostRepository(db, nil)
	interactionRepo := repository.NewInteractionRepository(db, nil)
	svc := NewDashboardService(
		postRepo,
		repository.NewProjectRepository(db, nil),
		repository.NewCommentRepository(db, nil),
		repository.NewUserRepository(db, nil),
		interactionRepo,
	).(*dashboardService)

	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	admin := testutil.CreateUser(t, db, "Admin", model.RoleAdmin)
	reader := testutil.CreateUser(t, db, "Reader", model.RoleUser)
	actor := Actor{UserID: admin.ID, Role: model.RoleAdmin}

	post := testutil.CreatePost(t, db, admin.ID, "Stats Post")
	old := testutil.CreatePost(t, db, admin.ID, "Old Post")
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", post.ID).UpdateColumn("created_at", now.AddDate(0, 0, -20)).Error)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", old.ID).UpdateColumn("created_at", now.AddDate(-1, 0, 0)).Error)
	require.NoError(t, db.Model(&model.User{}).Where("1 = 1").UpdateColumn("created_at", now.AddDate(0, -3, 0)).Error)
	testutil.CreateComment(t, db, post.ID, reader.ID, nil, "hello", now.Add(-time.Hour))

	_, _, err := interactionRepo.RecordPost(ctx, reader.ID, post.ID, model.KindView)
	require.NoError(t, err)
	_, _, err = interactionRepo.RecordPost(ctx, reader.ID, post.ID, model.KindLike)
	require.NoError(t, err)
	_, _, err = interactionRepo.RecordPost(ctx, admin.ID, post.ID, model.KindView)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Interaction{}).Where("kind = ?", model.KindView).UpdateColumn("created_at", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)).Error)

	stats, err := svc.Stats(ctx, actor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Posts)
	assert.EqualValues(t, 1, stats.PostsChange)
	assert.EqualValues(t, 1, stats.Comments)
	assert.EqualValues(t, 1, stats.CommentsChange)
	assert.EqualValues(t, 2, stats.Users)
	assert.EqualValues(t, 0, stats.UsersChange)

	months, err := svc.MonthlyViews(ctx, actor)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, "Mar", months[2].Name)
	assert.EqualValues(t, 2, months[2].Total)
	assert.EqualValues(t, 0, months[5].Total)

	activities, err := svc.RecentActivities(ctx, actor)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	for _, a := range activities {
		assert.Equal(t, "Stats Post", a.Target)
		assert.NotEmpty(t, a.User)
	}

	_, err = svc.Stats(ctx, Actor{UserID: reader.ID, Role: model.RoleUser})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestRenderActivityCommentLike(t *testing.T) {
	commentID := "c1"
	row := model.Interaction{
		ID:        "i1",
		UserID:    "u1",
		CommentID: &commentID,
		Kind:      model.KindLike,
		User:      &model.User{Name: "Ann"},
		Comment:   &model.Comment{ID: commentID, PostID: "p1", Post: &model.Post{Title: "Hello"}},
	}

	a, ok := renderActivity(row)
	require.True(t, ok)
	assert.Equal(t, "Ann", a.User)
	assert.Equal(t, "liked a comment on", a.Action)
	assert.Equal(t, "Hello", a.Target)
	assert.Equal(t, "p1", a.PostID)

	_, ok = renderActivity(model.Interaction{Kind: model.KindView})
	assert.False(t, ok)
}
