package drivers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSDriver(t *testing.T) {
	ctx := context.Background()

	newDriver := func(t *testing.T) (*LocalFSDriver, string) {
		t.Helper()
		dir := t.TempDir()
		driver, err := NewLocalFSDriver(dir, "/attachments")
		require.NoError(t, err)
		return driver, dir
	}

	t.Run("Fans Keys Out Into Subdirectories", func(t *testing.T) {
		driver, dir := newDriver(t)
		key := "abcdef123456.pdf"

		err := driver.Save(ctx, key, bytes.NewReader([]byte("discharge summary")), "application/pdf")
		require.NoError(t, err)

		fullPath := filepath.Join(dir, "ab", "cd", key)
		_, err = os.Stat(fullPath)
		assert.NoError(t, err)
	})

	t.Run("Round Trips Content And Content Type", func(t *testing.T) {
		driver, _ := newDriver(t)
		key := "abcdef123456.pdf"
		content := []byte("discharge summary")

		require.NoError(t, driver.Save(ctx, key, bytes.NewReader(content), "application/pdf"))

		reader, contentType, err := driver.Get(ctx, key)
		require.NoError(t, err)
		defer reader.Close()

		got, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Generates Public URL", func(t *testing.T) {
		driver, _ := newDriver(t)

		url, err := driver.GenerateURL(ctx, "abcdef123456.pdf", 0)
		require.NoError(t, err)
		assert.Equal(t, "/attachments/abcdef123456.pdf", url)
	})

	t.Run("Delete Removes Content And Sidecar", func(t *testing.T) {
		driver, dir := newDriver(t)
		key := "abcdef123456.pdf"

		require.NoError(t, driver.Save(ctx, key, bytes.NewReader([]byte("x")), "application/pdf"))
		require.NoError(t, driver.Delete(ctx, key))

		fullPath := filepath.Join(dir, "ab", "cd", key)
		_, err := os.Stat(fullPath)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(fullPath + ".meta")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		driver, _ := newDriver(t)
		assert.NoError(t, driver.Delete(ctx, "neverexisted.pdf"))
	})
}
