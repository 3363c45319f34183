package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/movira/ride-consistency-service/internal/config"
)

// LocalStore lists driver files from the local filesystem layout the
// upload handler writes: one directory per driver id under the uploads
// root.
type LocalStore struct {
	root      string
	refPrefix string
	log       *slog.Logger
}

func NewLocalStore(cfg config.Uploads, log *slog.Logger) *LocalStore {
	return &LocalStore{
		root:      cfg.Root,
		refPrefix: cfg.RefPrefix,
		log:       log,
	}
}

func (s *LocalStore) ListDriverFiles(_ context.Context, driverID int64) ([]FileInfo, error) {
	const op = "internal.uploads.LocalStore.ListDriverFiles"

	dir := filepath.Join(s.root, strconv.FormatInt(driverID, 10))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to read directory '%s': %w", op, dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// The file disappeared between ReadDir and Info.
			if os.IsNotExist(err) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to stat '%s': %w", op, entry.Name(), err)
		}

		files = append(files, FileInfo{
			Name:    entry.Name(),
			Ref:     path.Join(s.refPrefix, strconv.FormatInt(driverID, 10), entry.Name()),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}
