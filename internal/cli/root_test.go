package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testCommand(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommandWith(&RootOptions{
		OpenDB: func() (*gorm.DB, func(), error) { return db, func() {}, nil },
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "portfolioctl", cmd.Use)

	for _, name := range []string{"migrate", "seed", "recount"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	seed, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	file := seed.Flags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := testCommand(t, db, "migrate", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSeedThenRecount(t *testing.T) {
	db := testutil.NewDB(t)

	out, err := testCommand(t, db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	out, err = testCommand(t, db, "seed", "--format", "json")
	require.NoError(t, err)
	var seeded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, false, seeded["skipped"])
	assert.EqualValues(t, 3, seeded["posts"])

	out, err = testCommand(t, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "already seeded")

	require.NoError(t, db.Model(&model.Post{}).Where("1 = 1").UpdateColumn("likes", 42).Error)

	out, err = testCommand(t, db, "recount")
	require.NoError(t, err)
	assert.Contains(t, out, "recounted 3 posts and 2 comments")

	var withLikes int64
	require.NoError(t, db.Model(&model.Post{}).Where("likes > 0").Count(&withLikes).Error)
	assert.Zero(t, withLikes)
}
