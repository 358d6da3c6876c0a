package index

import (
	"context"
	"log/slog"

	"github.com/starford/scraps/internal/storage"
	"github.com/starford/scraps/internal/timestamp"
)

// CachedTimestamper answers from the cache and falls back to Next on a
// miss, storing the result. Cache failures are logged and bypassed.
type CachedTimestamper struct {
	Cache  StampCache
	Next   timestamp.Timestamper
	Logger *slog.Logger
}

func (c *CachedTimestamper) Timestamp(ctx context.Context, file storage.ScrapFile) (*int64, error) {
	hit, err := c.Cache.GetStamp(file.Path, file.Checksum)
	if err != nil {
		c.Logger.Warn("index: stamp lookup failed", slog.String("path", file.Path), slog.String("error", err.Error()))
	} else if hit != nil {
		return hit.CommittedTS, nil
	}

	ts, err := c.Next.Timestamp(ctx, file)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.PutStamp(CommitStamp{Path: file.Path, Checksum: file.Checksum, CommittedTS: ts}); err != nil {
		c.Logger.Warn("index: stamp store failed", slog.String("path", file.Path), slog.String("error", err.Error()))
	}
	return ts, nil
}
