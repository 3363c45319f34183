package uploads

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/movira/ride-consistency-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsProfileCandidate(t *testing.T) {
	assert.True(t, IsProfileCandidate("profile_123.png"))
	assert.True(t, IsProfileCandidate("profile_"))
	assert.False(t, IsProfileCandidate("license_scan.pdf"))
	assert.False(t, IsProfileCandidate("my_profile_photo.png"))
}

func TestProfileCandidates(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("orders newest first and drops non-candidates", func(t *testing.T) {
		files := []FileInfo{
			{Name: "profile_old.png", ModTime: base},
			{Name: "license_scan.pdf", ModTime: base.Add(2 * time.Hour)},
			{Name: "profile_new.png", ModTime: base.Add(time.Hour)},
		}

		got := ProfileCandidates(files)

		require.Len(t, got, 2)
		assert.Equal(t, "profile_new.png", got[0].Name)
		assert.Equal(t, "profile_old.png", got[1].Name)
	})

	t.Run("equal timestamps break by descending name", func(t *testing.T) {
		files := []FileInfo{
			{Name: "profile_a.png", ModTime: base},
			{Name: "profile_b.png", ModTime: base},
		}

		got := ProfileCandidates(files)

		require.Len(t, got, 2)
		assert.Equal(t, "profile_b.png", got[0].Name)
	})

	t.Run("no candidates yields an empty slice", func(t *testing.T) {
		got := ProfileCandidates([]FileInfo{{Name: "notes.txt", ModTime: base}})
		assert.Empty(t, got)
	})
}

func TestLocalStore_ListDriverFiles(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	t.Run("lists files with canonical references", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "7")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "profile_1.png"), []byte("img"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "license.pdf"), []byte("doc"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "thumbs"), 0o755))

		store := NewLocalStore(config.Uploads{Root: root, RefPrefix: "uploads/usuarios"}, log)

		files, err := store.ListDriverFiles(ctx, 7)
		require.NoError(t, err)

		// Subdirectories are skipped.
		require.Len(t, files, 2)

		refs := make(map[string]string, len(files))
		for _, f := range files {
			refs[f.Name] = f.Ref
			assert.False(t, f.ModTime.IsZero())
		}

		assert.Equal(t, "uploads/usuarios/7/profile_1.png", refs["profile_1.png"])
		assert.Equal(t, "uploads/usuarios/7/license.pdf", refs["license.pdf"])
	})

	t.Run("driver without an area yields no files and no error", func(t *testing.T) {
		store := NewLocalStore(config.Uploads{Root: t.TempDir(), RefPrefix: "uploads/usuarios"}, log)

		files, err := store.ListDriverFiles(ctx, 404)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
