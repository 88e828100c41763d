package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
)

// Folders used as key prefixes in the object store.
const (
	FolderAvatars    = "avatars"
	FolderCovers     = "covers"
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
)

// DurationProber measures media length in whole seconds.
type DurationProber interface {
	Duration(ctx context.Context, r io.Reader) (int64, error)
}

// Library is the media service used by the HTTP handlers.
type Library struct {
	storage AssetStorage
	prober  DurationProber
	reaper  *Reaper
}

// NewLibrary combines an object store, a duration prober and a reaper. The
// prober and reaper are optional.
func NewLibrary(storage AssetStorage, prober DurationProber, reaper *Reaper) *Library {
	return &Library{storage: storage, prober: prober, reaper: reaper}
}

// Store uploads the file under folder with a fresh key.
func (l *Library) Store(ctx context.Context, folder string, upload Upload) (models.Asset, error) {
	if l == nil || l.storage == nil {
		return models.Asset{}, ErrStorageUnavailable
	}
	if upload.Body == nil {
		return models.Asset{}, ErrEmptyUpload
	}
	if _, err := upload.Body.Seek(0, io.SeekStart); err != nil {
		return models.Asset{}, fmt.Errorf("rewind upload: %w", err)
	}

	key := path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(upload.Filename)))

	ctx, span := logging.StartSpan(ctx, "media.store", slog.String("key", key))
	url, err := l.storage.Save(ctx, key, upload.Body)
	span.End(err)
	metrics.RecordMediaOperation("upload", err)
	if err != nil {
		return models.Asset{}, err
	}

	return models.Asset{URL: url, PublicID: key}, nil
}

// Duration probes the upload. A failed probe is logged and reported as zero.
func (l *Library) Duration(ctx context.Context, upload Upload) int64 {
	if l == nil || l.prober == nil || upload.Body == nil {
		return 0
	}
	if _, err := upload.Body.Seek(0, io.SeekStart); err != nil {
		logging.FromContext(ctx).Warn("rewind upload for probe", "error", err)
		return 0
	}

	ctx, span := logging.StartSpan(ctx, "media.probe", slog.String("filename", upload.Filename))
	seconds, err := l.prober.Duration(ctx, upload.Body)
	span.End(nil)
	if err != nil {
		logging.FromContext(ctx).Warn("probe media duration", "error", err)
		return 0
	}
	return seconds
}

// Discard schedules best-effort deletion of assets. Scheduling failures are
// logged and otherwise ignored.
func (l *Library) Discard(ctx context.Context, assets ...models.Asset) {
	if l == nil || l.reaper == nil {
		return
	}
	keys := make([]string, 0, len(assets))
	for _, asset := range assets {
		keys = append(keys, asset.PublicID)
	}
	if err := l.reaper.Enqueue(context.WithoutCancel(ctx), keys...); err != nil {
		logging.FromContext(ctx).Warn("schedule asset deletion", "keys", keys, "error", err)
		metrics.RecordMediaOperation("delete", err)
	}
}
