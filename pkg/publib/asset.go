package publib

import (
	"strings"
	"time"
)

// AssetType is the media type of an uploaded asset.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
)

// AssetTypeForMime infers the asset type from a MIME type.
// Anything that is not video is treated as an image.
func AssetTypeForMime(mime string) AssetType {
	if strings.HasPrefix(mime, "video/") {
		return AssetVideo
	}
	return AssetImage
}

// AssetStatus is the remote processing state of an asset.
type AssetStatus string

const (
	AssetProcessing AssetStatus = "processing"
	AssetCompleted  AssetStatus = "completed"
	AssetFailed     AssetStatus = "failed"
)

// AssetURLs holds the variants produced by the remote transcoding pipeline.
type AssetURLs struct {
	Original  string `json:"original,omitempty"`
	Optimized string `json:"optimized,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Asset is an uploaded media file undergoing remote transcoding before it is
// usable in a publication. It is created in processing state on upload
// acceptance and transitions to completed or failed asynchronously.
type Asset struct {
	Id        string      `json:"id"`
	UserId    string      `json:"user_id"`
	Type      AssetType   `json:"type"`
	Status    AssetStatus `json:"status"`
	URLs      AssetURLs   `json:"urls"`
	Tags      []string    `json:"tags,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Ready reports whether the asset has finished processing and carries a
// usable URL. Completed status alone is not enough: the pipeline must have
// produced a non-blank original or optimized variant.
func (a *Asset) Ready() bool {
	if a.Status != AssetCompleted {
		return false
	}
	return !blank(a.URLs.Original) || !blank(a.URLs.Optimized)
}

// PreferredURL returns the optimized URL when present, falling back to the
// original. It returns ErrAssetMissingURL when neither exists rather than
// silently yielding an empty URL.
func (a *Asset) PreferredURL() (string, error) {
	if !blank(a.URLs.Optimized) {
		return a.URLs.Optimized, nil
	}
	if !blank(a.URLs.Original) {
		return a.URLs.Original, nil
	}
	return "", ErrAssetMissingURL
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
