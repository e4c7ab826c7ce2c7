package database_test

import (
	"context"
	"testing"

	"github.com/kamruz-zzaman/portfolio-v2/internal/database"
	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesTables(t *testing.T) {
	db := testutil.NewDB(t)

	for _, table := range []string{"users", "posts", "projects", "comments", "interactions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&model.Interaction{}, "idx_interaction_user_post"))
	assert.True(t, db.Migrator().HasIndex(&model.Interaction{}, "idx_interaction_user_comment"))

	// Running it again is a no-op.
	require.NoError(t, database.Migrate(db))
}

func TestHealth(t *testing.T) {
	db := testutil.NewDB(t)

	stats := database.Health(context.Background(), db)
	assert.Equal(t, "up", stats["status"])

	require.NoError(t, database.Close(db))
	stats = database.Health(context.Background(), db)
	assert.Equal(t, "down", stats["status"])
}
