package publib

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Default asset polling configuration values.
const (
	DEF_POLL_ATTEMPTS = 10
	DEF_POLL_DELAY    = 3 * time.Second
)

// AssetAPI is the remote asset pipeline port. Upload accepts a file and
// returns the created asset (usually still processing); GetAsset reports the
// current processing state.
type AssetAPI interface {
	UploadAsset(ctx context.Context, up AssetUpload) (*Asset, error)
	GetAsset(ctx context.Context, id string) (*Asset, error)
}

// AssetUpload is the payload submitted to AssetAPI.UploadAsset.
type AssetUpload struct {
	UserId   string
	Name     string
	MimeType string
	Type     AssetType
	Tags     []string
	Body     io.Reader
}

// PollConfig bounds the processing wait loop.
type PollConfig struct {
	// MaxAttempts is the number of status polls before giving up.
	MaxAttempts int
	// Delay is the fixed pause before each poll. No backoff: the remote
	// pipeline's transcoding time does not shrink under client pressure.
	Delay time.Duration
}

// DefaultPollConfig returns the stock 10-attempt, 3-second budget.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxAttempts: DEF_POLL_ATTEMPTS,
		Delay:       DEF_POLL_DELAY,
	}
}

// AssetPoller uploads local files and waits for the remote pipeline to
// finish processing them. Files are handled strictly sequentially: one
// file's full upload and poll cycle completes before the next begins, which
// keeps failure attribution unambiguous.
type AssetPoller struct {
	api     AssetAPI
	fs      afero.Fs
	cfg     PollConfig
	store   *Store
	onReady AssetReadyHandlerFunc
	l       *log.Logger
}

// NewAssetPoller creates a poller over the given asset API.
// fs defaults to the OS filesystem and cfg to DefaultPollConfig.
func NewAssetPoller(api AssetAPI, fs afero.Fs, cfg *PollConfig, l *log.Logger) *AssetPoller {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	c := DefaultPollConfig()
	if cfg != nil {
		c = *cfg
	}
	if l == nil {
		l = log.Default()
	}
	return &AssetPoller{api: api, fs: fs, cfg: c, l: l}
}

// SetStore makes the poller persist each finished asset locally so later
// lookups do not hit the remote pipeline.
func (ap *AssetPoller) SetStore(st *Store) {
	ap.store = st
}

// SetReadyHandler registers a callback fired once per asset when its
// processing finishes with a usable URL. Panics inside the callback are
// isolated.
func (ap *AssetPoller) SetReadyHandler(fn AssetReadyHandlerFunc) {
	ap.onReady = fn
}

// UploadFiles uploads each path and waits until its asset is usable,
// returning one MediaItem per file in input order. Any failure aborts the
// whole batch with an error naming the offending file; callers must not
// assume partial results.
func (ap *AssetPoller) UploadFiles(ctx context.Context, userId string, paths []string) ([]MediaItem, error) {
	media := make([]MediaItem, 0, len(paths))
	for _, path := range paths {
		item, err := ap.uploadOne(ctx, userId, path)
		if err != nil {
			return nil, err
		}
		media = append(media, item)
	}
	return media, nil
}

func (ap *AssetPoller) uploadOne(ctx context.Context, userId, path string) (MediaItem, error) {
	name := filepath.Base(path)
	f, err := ap.fs.Open(path)
	if err != nil {
		return MediaItem{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	assetType := AssetTypeForMime(mimeType)

	asset, err := ap.api.UploadAsset(ctx, AssetUpload{
		UserId:   userId,
		Name:     name,
		MimeType: mimeType,
		Type:     assetType,
		Tags:     []string{"publication", string(assetType)},
		Body:     f,
	})
	if err != nil {
		return MediaItem{}, fmt.Errorf("upload %s: %w", name, err)
	}

	if asset.Status == AssetProcessing {
		asset, err = ap.waitReady(ctx, asset.Id, name)
		if err != nil {
			return MediaItem{}, err
		}
	}
	if asset.Status == AssetFailed {
		return MediaItem{}, fmt.Errorf("%w: %s", ErrAssetProcessingFailed, name)
	}

	url, err := asset.PreferredURL()
	if err != nil {
		return MediaItem{}, fmt.Errorf("%w (%s)", err, name)
	}
	if ap.store != nil {
		if err := ap.store.SaveAsset(ctx, asset); err != nil {
			ap.l.Printf("asset %s: local save failed: %s", asset.Id, err.Error())
		}
	}
	if ap.onReady != nil {
		safeCall(ap.l, "asset ready handler", func() {
			ap.onReady(asset.Id, url)
		})
	}
	return MediaItem{
		AssetID: asset.Id,
		URL:     url,
		Type:    asset.Type,
	}, nil
}

// waitReady polls the asset until it is ready or the attempt budget runs
// out. Transport errors consume attempts from the same budget; the last one
// is surfaced when the budget is exhausted.
func (ap *AssetPoller) waitReady(ctx context.Context, id, name string) (*Asset, error) {
	var lastErr error
	for attempt := 1; attempt <= ap.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(ap.cfg.Delay):
		}
		asset, err := ap.api.GetAsset(ctx, id)
		if err != nil {
			lastErr = err
			ap.l.Printf("asset %s: poll %d/%d failed: %s", id, attempt, ap.cfg.MaxAttempts, err.Error())
			continue
		}
		if asset.Status == AssetFailed {
			return nil, fmt.Errorf("%w: %s", ErrAssetProcessingFailed, name)
		}
		if asset.Ready() {
			return asset, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("asset %s (%s): %w", id, name, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetProcessingTimeout, name)
}
