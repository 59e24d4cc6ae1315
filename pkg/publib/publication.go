// Package publib provides core structures and coordination logic for managing
// social-media publications: composing, scheduling, publishing across
// platforms, and reconciling asset processing state.
package publib

import (
	"strings"
	"time"
)

// Platform identifies a social network a publication targets.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram:
		return true
	}
	return false
}

// ContentKind is the per-platform presentation of a publication.
type ContentKind string

const (
	KindPost  ContentKind = "post"
	KindReel  ContentKind = "reel"
	KindStory ContentKind = "story"
)

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	switch k {
	case KindPost, KindReel, KindStory:
		return true
	}
	return false
}

// MediaItem references a processed asset attached to a publication.
type MediaItem struct {
	// AssetID is the identifier of the uploaded asset.
	AssetID string `json:"asset_id"`
	// URL is the resolved media URL selected after processing.
	URL string `json:"url"`
	// Type is the asset type the item was uploaded as.
	Type AssetType `json:"type"`
}

// Content holds the user-authored body of a publication.
type Content struct {
	Text     string      `json:"text"`
	Hashtags []string    `json:"hashtags,omitempty"`
	Mentions []string    `json:"mentions,omitempty"`
	Links    []string    `json:"links,omitempty"`
	Media    []MediaItem `json:"media,omitempty"`
}

// Publication represents a user-authored social-media post with scheduling
// and multi-platform targeting. It is the unit managed by the Manager and
// displayed on the calendar.
type Publication struct {
	// Id is the unique identifier of the publication.
	Id string `json:"id"`
	// UserId is the owner of the publication.
	UserId string `json:"user_id"`
	// Content is the authored body.
	Content Content `json:"content"`
	// Platforms is the set of targeted platforms.
	Platforms []Platform `json:"platforms"`
	// Kinds maps each targeted platform to its content kind.
	Kinds map[Platform]ContentKind `json:"kinds"`
	// Status is the current lifecycle state.
	Status Status `json:"status"`
	// ScheduledAt is the publish time for scheduled publications.
	// Zero means not scheduled.
	ScheduledAt time.Time `json:"scheduled_at"`
	// PublishedAt is set once the publication reaches published.
	PublishedAt time.Time `json:"published_at"`
	// CronExpr is the cron expression for recurring publications.
	// Empty string means one-shot.
	CronExpr string `json:"cron_expr,omitempty"`
	// RemoteIds maps each platform to the id returned by it on publish.
	RemoteIds map[Platform]string `json:"remote_ids,omitempty"`
	// Error holds the last publish failure, if any.
	Error string `json:"error,omitempty"`
	// CreatedAt is the time the publication was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the time the publication was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// KindFor returns the content kind configured for the given platform,
// defaulting to KindPost when none is set.
func (p *Publication) KindFor(platform Platform) ContentKind {
	if k, ok := p.Kinds[platform]; ok {
		return k
	}
	return KindPost
}

// Targets reports whether the publication targets the given platform.
func (p *Publication) Targets(platform Platform) bool {
	for _, pl := range p.Platforms {
		if pl == platform {
			return true
		}
	}
	return false
}

// Validate checks the publication for creation. It returns a list of
// human-readable field errors; an empty list means the publication is valid.
// Validation never reaches the network.
func (p *Publication) Validate(now time.Time) []string {
	var errs []string
	if strings.TrimSpace(p.Content.Text) == "" && len(p.Content.Media) == 0 {
		errs = append(errs, "content must have text or media")
	}
	if len(p.Platforms) == 0 {
		errs = append(errs, "at least one platform is required")
	}
	seen := make(map[Platform]struct{}, len(p.Platforms))
	for _, pl := range p.Platforms {
		if !pl.Valid() {
			errs = append(errs, "unknown platform: "+string(pl))
			continue
		}
		if _, dup := seen[pl]; dup {
			errs = append(errs, "duplicate platform: "+string(pl))
			continue
		}
		seen[pl] = struct{}{}
		if k, ok := p.Kinds[pl]; ok && !k.Valid() {
			errs = append(errs, "unknown content kind for "+string(pl)+": "+string(k))
		}
	}
	if !p.ScheduledAt.IsZero() && p.ScheduledAt.Before(now) {
		errs = append(errs, "scheduled date must be in the future")
	}
	return errs
}

// Result is the outcome of a validating operation. Operations return it
// instead of raising validation failures as errors.
type Result struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// ResultOK is the successful Result.
func ResultOK() Result { return Result{OK: true} }

// ResultFailed builds a failed Result from field errors.
func ResultFailed(errs ...string) Result { return Result{Errors: errs} }
