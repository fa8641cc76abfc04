package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_events.sql": {Data: []byte("CREATE TABLE events ();")},
		"001_init.sql":   {Data: []byte("CREATE TABLE users ();")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := Collect(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Equal(t, "002", migrations[1].Version)
	assert.Contains(t, migrations[1].SQL, "events")
}

func TestCollectRejectsBadNames(t *testing.T) {
	_, err := Collect(fstest.MapFS{"init.sql": {Data: []byte("")}})
	assert.Error(t, err)

	_, err = Collect(fstest.MapFS{
		"001_a.sql": {Data: []byte("")},
		"001_b.sql": {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "share version")
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := Collect(Files())
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "001", migrations[0].Version)
	var all string
	for _, m := range migrations {
		all += m.SQL
	}
	for _, table := range []string{"universities", "users", "profiles", "refresh_tokens", "events", "event_registrations",
		"conversations", "messages", "posts", "post_likes", "post_comments", "notifications", "newsletters", "exam_results", "jobs"} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}
