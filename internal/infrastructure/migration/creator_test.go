package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates up and down files", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "Add Payment Index")
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(mf.UpPath, "_add_payment_index.up.sql"))
		assert.True(t, strings.HasSuffix(mf.DownPath, "_add_payment_index.down.sql"))

		upContent, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(upContent), "Add Payment Index")

		_, err = os.Stat(mf.DownPath)
		assert.NoError(t, err)
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := t.TempDir() + "/nested/migrations"

		_, err := CreateMigration(dir, "init")
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_payment_index", sanitizeName("Add Payment Index"))
	assert.Equal(t, "create_lots", sanitizeName("create-lots"))
	assert.Equal(t, "v2_schema", sanitizeName("V2  Schema!"))
	assert.Equal(t, "trailing", sanitizeName("trailing "))
}

func TestListMigrations(t *testing.T) {
	t.Run("lists only up migrations", func(t *testing.T) {
		dir := t.TempDir()

		_, err := CreateMigration(dir, "first")
		require.NoError(t, err)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.True(t, strings.HasSuffix(migrations[0], "_first"))
	})

	t.Run("returns empty for missing directory", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir() + "/missing")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
