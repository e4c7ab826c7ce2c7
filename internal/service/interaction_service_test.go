package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedActivities struct {
	mu   sync.Mutex
	list []model.Activity
}

func (r *recordedActivities) Publish(_ context.Context, a model.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, a)
}

func (r *recordedActivities) all() []model.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Activity(nil), r.list...)
}

type ledgerFixture struct {
	db         *gorm.DB
	svc        service.InteractionService
	activities *recordedActivities
	user       *model.User
	post       *model.Post
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := testutil.NewDB(t)
	activities := &recordedActivities{}
	svc := service.NewInteractionService(repository.NewInteractionRepository(db, nil), activities)
	user := testutil.CreateUser(t, db, "Reader", model.RoleUser)
	author := testutil.CreateUser(t, db, "Author", model.RoleAdmin)
	post := testutil.CreatePost(t, db, author.ID, "Ledger Post")
	return &ledgerFixture{db: db, svc: svc, activities: activities, user: user, post: post}
}

func (f *ledgerFixture) rows(t *testing.T, kind model.InteractionKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Interaction{}).
		Where("user_id = ? AND post_id = ? AND kind = ?", f.user.ID, f.post.ID, kind).
		Count(&n).Error)
	return n
}

func TestDoubleLikeIsIdempotent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	c1, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindLike)
	require.NoError(t, err)
	c2, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindLike)
	require.NoError(t, err)

	assert.EqualValues(t, 1, c1.Likes)
	assert.Equal(t, c1, c2)
	assert.EqualValues(t, 1, f.rows(t, model.KindLike))
	assert.Len(t, f.activities.all(), 1)
}

func TestLikeThenDislikeSwitches(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindLike)
	require.NoError(t, err)
	c, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindDislike)
	require.NoError(t, err)

	assert.EqualValues(t, 0, c.Likes)
	assert.EqualValues(t, 1, c.Dislikes)
	assert.EqualValues(t, 0, f.rows(t, model.KindLike))
	assert.EqualValues(t, 1, f.rows(t, model.KindDislike))

	states, err := f.svc.GetUserInteractionState(ctx, f.user.ID, model.TargetTypePost, []string{f.post.ID})
	require.NoError(t, err)
	assert.Equal(t, model.InteractionState{Liked: false, Disliked: true}, states[f.post.ID])
}

func TestRemoveMissingLikeIsNotFound(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.svc.RemovePostInteraction(context.Background(), f.user.ID, f.post.ID, model.KindLike)
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	var post model.Post
	require.NoError(t, f.db.First(&post, "id = ?", f.post.ID).Error)
	assert.EqualValues(t, 0, post.Likes)
}

func TestRemoveNeverGoesNegative(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindLike)
	require.NoError(t, err)
	// Drift the counter below the ledger to exercise the floor.
	require.NoError(t, f.db.Model(&model.Post{}).Where("id = ?", f.post.ID).UpdateColumn("likes", 0).Error)

	c, err := f.svc.RemovePostInteraction(ctx, f.user.ID, f.post.ID, model.KindLike)
	require.NoError(t, err)
	assert.EqualValues(t, 0, c.Likes)
}

func TestViewAndShareCountOncePerUser(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindView)
		require.NoError(t, err)
		_, err = f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindShare)
		require.NoError(t, err)
	}

	c, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindView)
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.Views)
	assert.EqualValues(t, 1, c.Shares)

	_, err = f.svc.RemovePostInteraction(ctx, f.user.ID, f.post.ID, model.KindView)
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestRecordRejectsBadInput(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPostInteraction(ctx, "", f.post.ID, model.KindLike)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	_, err = f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.InteractionKind("love"))
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = f.svc.RecordPostInteraction(ctx, f.user.ID, "missing", model.KindLike)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = service.ParseInteractionKind(" LIKE ")
	assert.NoError(t, err)
	_, err = service.ParseInteractionKind("")
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestCommentLikeLifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	comment := testutil.CreateComment(t, f.db, f.post.ID, f.user.ID, nil, "nice", time.Now().UTC())

	likes, err := f.svc.RecordCommentLike(ctx, f.user.ID, comment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	likes, err = f.svc.RecordCommentLike(ctx, f.user.ID, comment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	states, err := f.svc.GetUserInteractionState(ctx, f.user.ID, model.TargetTypeComment, []string{comment.ID})
	require.NoError(t, err)
	assert.True(t, states[comment.ID].Liked)

	likes, err = f.svc.RemoveCommentLike(ctx, f.user.ID, comment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, likes)

	_, err = f.svc.RemoveCommentLike(ctx, f.user.ID, comment.ID)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = f.svc.RecordCommentLike(ctx, f.user.ID, "missing")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	published := f.activities.all()
	require.Len(t, published, 2)
	assert.Equal(t, model.ActivityInteraction, published[0].Type)
	assert.Equal(t, comment.ID, published[0].CommentID)
	assert.Equal(t, model.ActivityInteractionRemove, published[1].Type)
}

func TestUserStatesTargetType(t *testing.T) {
	f := newLedgerFixture(t)
	_, err := f.svc.GetUserInteractionState(context.Background(), f.user.ID, "video", []string{"x"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	states, err := f.svc.GetUserInteractionState(context.Background(), f.user.ID, model.TargetTypePost, nil)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestDraftsRejectEngagement(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	comment := testutil.CreateComment(t, f.db, f.post.ID, f.user.ID, nil, "before unpublish", time.Now().UTC())
	require.NoError(t, f.db.Model(&model.Post{}).Where("id = ?", f.post.ID).Update("published", false).Error)

	for _, kind := range []model.InteractionKind{model.KindLike, model.KindView, model.KindShare} {
		_, err := f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, kind)
		assert.Equal(t, service.KindNotFound, service.KindOf(err), kind)
	}
	_, err := f.svc.RecordCommentLike(ctx, f.user.ID, comment.ID)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	var rows int64
	require.NoError(t, f.db.Model(&model.Interaction{}).Count(&rows).Error)
	assert.Zero(t, rows)
	assert.Empty(t, f.activities.all())
}

func TestMalformedTargetIDs(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPostInteraction(ctx, f.user.ID, "not-a-uuid", model.KindLike)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	_, err = f.svc.RemovePostInteraction(ctx, f.user.ID, "not-a-uuid", model.KindLike)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	_, err = f.svc.RemoveCommentLike(ctx, f.user.ID, "not-a-uuid")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = f.svc.RecordPostInteraction(ctx, f.user.ID, f.post.ID, model.KindLike)
	require.NoError(t, err)
	states, err := f.svc.GetUserInteractionState(ctx, f.user.ID, model.TargetTypePost, []string{"junk", f.post.ID})
	require.NoError(t, err)
	assert.True(t, states[f.post.ID].Liked)
	assert.NotContains(t, states, "junk")
}
