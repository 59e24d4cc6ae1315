package common

import (
	"time"

	"github.com/pubdeck/pubdeck/pkg/loading"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

type InputPublicationId struct {
	PublicationId string `json:"publication_id"`
}

type CreateParams struct {
	UserId      string                                 `json:"user_id"`
	Content     publib.Content                         `json:"content"`
	Platforms   []publib.Platform                      `json:"platforms"`
	Kinds       map[publib.Platform]publib.ContentKind `json:"kinds,omitempty"`
	ScheduledAt time.Time                              `json:"scheduled_at,omitempty"`
	CronExpr    string                                 `json:"cron_expr,omitempty"`
}

type PublicationResponse struct {
	Publication *publib.Publication `json:"publication"`
}

type UpdateParams struct {
	PublicationId string                                 `json:"publication_id"`
	Content       publib.Content                         `json:"content"`
	Platforms     []publib.Platform                      `json:"platforms,omitempty"`
	Kinds         map[publib.Platform]publib.ContentKind `json:"kinds,omitempty"`
}

type ScheduleParams struct {
	PublicationId string    `json:"publication_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	CronExpr      string    `json:"cron_expr,omitempty"`
}

type RescheduleParams struct {
	PublicationId string    `json:"publication_id"`
	NewStart      time.Time `json:"new_start"`
}

type ListParams struct {
	UserId   string          `json:"user_id,omitempty"`
	From     time.Time       `json:"from,omitempty"`
	To       time.Time       `json:"to,omitempty"`
	Statuses []publib.Status `json:"statuses,omitempty"`
	Platform publib.Platform `json:"platform,omitempty"`
}

type ListResponse struct {
	Publications []*publib.Publication `json:"publications"`
}

type EventsParams struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Statuses []publib.Status `json:"statuses,omitempty"`
	Platform publib.Platform `json:"platform,omitempty"`
	Search   string          `json:"search,omitempty"`
}

type EventsResponse struct {
	Events []publib.CalendarEvent `json:"events"`
}

type StatusUpdate struct {
	PublicationId string        `json:"publication_id"`
	OldStatus     publib.Status `json:"old_status"`
	NewStatus     publib.Status `json:"new_status"`
	Error         string        `json:"error,omitempty"`
}

type RefetchUpdate struct {
	Revision uint64 `json:"revision"`
}

type AssetUploadParams struct {
	UserId   string           `json:"user_id"`
	FilePath string           `json:"file_path"`
	Type     publib.AssetType `json:"type,omitempty"`
}

type AssetResponse struct {
	Asset *publib.Asset `json:"asset"`
}

type InputAssetId struct {
	AssetId string `json:"asset_id"`
}

type ConnectParams struct {
	Platform    publib.Platform `json:"platform"`
	AccountId   string          `json:"account_id"`
	UserId      string          `json:"user_id"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at,omitempty"`
}

type AccountInfo struct {
	Platform  publib.Platform `json:"platform"`
	AccountId string          `json:"account_id"`
	UserId    string          `json:"user_id"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
}

type AccountListResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

type ReadyResponse struct {
	State loading.State `json:"state"`
}
