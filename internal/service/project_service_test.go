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
)

func TestProjectCRUD(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewProjectService(repository.NewProjectRepository(db, nil))
	ctx := context.Background()
	admin := service.Actor{UserID: "admin-1", Role: model.RoleAdmin}

	created, err := svc.CreateProject(ctx, admin, service.ProjectRequest{
		Title:       "Portfolio Site",
		Description: "This site",
		Tags:        []string{"go", "gin"},
		Featured:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "portfolio-site", created.Slug)

	_, err = svc.CreateProject(ctx, admin, service.ProjectRequest{Title: "Portfolio Site", Description: "again"})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	_, err = svc.CreateProject(ctx, service.Actor{UserID: "u", Role: model.RoleUser}, service.ProjectRequest{Title: "x", Description: "y"})
	assert.Equal(t, service.KindForbidden, service.KindOf(err))

	got, err := svc.GetProject(ctx, "portfolio-site")
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"go", "gin"}, got.Tags)

	featured := true
	list, err := svc.ListProjects(ctx, &featured)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := svc.UpdateProject(ctx, admin, created.ID, service.ProjectRequest{Title: "Portfolio Site", Description: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Description)
	assert.False(t, updated.Featured)

	list, err = svc.ListProjects(ctx, &featured)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.DeleteProject(ctx, admin, created.ID))
	_, err = svc.GetProject(ctx, "portfolio-site")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	assert.Equal(t, service.KindNotFound, service.KindOf(svc.DeleteProject(ctx, admin, created.ID)))
}
