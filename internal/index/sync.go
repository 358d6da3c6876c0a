package index

import (
	"context"
	"log/slog"

	"github.com/starford/scraps/internal/storage"
	"github.com/starford/scraps/internal/timestamp"
)

// Sync walks the scraps directory and brings the cache up to date:
//   - new/changed files get a fresh timestamp from stamper
//   - files removed from disk are deleted from the cache
func Sync(ctx context.Context, db StampCache, store storage.Provider, stamper timestamp.Timestamper, logger *slog.Logger) error {
	files, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	cached := &CachedTimestamper{Cache: db, Next: stamper, Logger: logger}
	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}
		if checksums[f.Path] == f.Checksum {
			continue
		}
		if _, err := cached.Timestamp(ctx, f); err != nil {
			logger.Warn("sync: timestamp failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: stamped", slog.String("path", f.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteStamp(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}
	return nil
}
