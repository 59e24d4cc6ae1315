package pubcli

import (
	"encoding/json"
	"time"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// CreateOpts carries the optional fields of a publication create call.
type CreateOpts struct {
	Kinds       map[publib.Platform]publib.ContentKind `json:"kinds,omitempty"`
	ScheduledAt time.Time                              `json:"scheduled_at,omitempty"`
	CronExpr    string                                 `json:"cron_expr,omitempty"`
}

func (c *Client) Create(userId string, content publib.Content, platforms []publib.Platform, opts *CreateOpts) (*common.PublicationResponse, error) {
	if opts == nil {
		opts = &CreateOpts{}
	}
	return invoke[common.PublicationResponse](c, common.UPDATE_CREATE, &common.CreateParams{
		UserId:      userId,
		Content:     content,
		Platforms:   platforms,
		Kinds:       opts.Kinds,
		ScheduledAt: opts.ScheduledAt,
		CronExpr:    opts.CronExpr,
	})
}

func (c *Client) Update(publicationId string, content publib.Content) (*common.PublicationResponse, error) {
	return invoke[common.PublicationResponse](c, common.UPDATE_UPDATE, &common.UpdateParams{
		PublicationId: publicationId,
		Content:       content,
	})
}

func (c *Client) Schedule(publicationId string, at time.Time, cronExpr string) (*common.PublicationResponse, error) {
	return invoke[common.PublicationResponse](c, common.UPDATE_SCHEDULE, &common.ScheduleParams{
		PublicationId: publicationId,
		ScheduledAt:   at,
		CronExpr:      cronExpr,
	})
}

func (c *Client) Reschedule(publicationId string, newStart time.Time) (*common.PublicationResponse, error) {
	return invoke[common.PublicationResponse](c, common.UPDATE_RESCHEDULE, &common.RescheduleParams{
		PublicationId: publicationId,
		NewStart:      newStart,
	})
}

func (c *Client) Cancel(publicationId string) (*common.PublicationResponse, error) {
	return invoke[common.PublicationResponse](c, common.UPDATE_CANCEL, &common.InputPublicationId{
		PublicationId: publicationId,
	})
}

func (c *Client) PublishNow(publicationId string) (*common.PublicationResponse, error) {
	return invoke[common.PublicationResponse](c, common.UPDATE_PUBLISH_NOW, &common.InputPublicationId{
		PublicationId: publicationId,
	})
}

func (c *Client) Delete(publicationId string) (bool, error) {
	_, err := c.invoke(common.UPDATE_DELETE, &common.InputPublicationId{
		PublicationId: publicationId,
	})
	return err == nil, err
}

type ListOpts common.ListParams

func (c *Client) List(opts *ListOpts) (*common.ListResponse, error) {
	if opts == nil {
		opts = &ListOpts{}
	}
	return invoke[common.ListResponse](c, common.UPDATE_LIST, (*common.ListParams)(opts))
}

func (c *Client) Events(from, to time.Time, opts *common.EventsParams) (*common.EventsResponse, error) {
	if opts == nil {
		opts = &common.EventsParams{}
	}
	opts.From = from
	opts.To = to
	return invoke[common.EventsResponse](c, common.UPDATE_EVENTS, opts)
}

func (c *Client) UploadAsset(userId, filePath string) (*common.AssetResponse, error) {
	return invoke[common.AssetResponse](c, common.UPDATE_ASSET_UPLOAD, &common.AssetUploadParams{
		UserId:   userId,
		FilePath: filePath,
	})
}

func (c *Client) GetAsset(assetId string) (*common.AssetResponse, error) {
	return invoke[common.AssetResponse](c, common.UPDATE_ASSET_GET, &common.InputAssetId{
		AssetId: assetId,
	})
}

func (c *Client) ConnectAccount(p *common.ConnectParams) (*common.AccountInfo, error) {
	return invoke[common.AccountInfo](c, common.UPDATE_ACCOUNT_CONNECT, p)
}

func (c *Client) ListAccounts() (*common.AccountListResponse, error) {
	return invoke[common.AccountListResponse](c, common.UPDATE_ACCOUNT_LIST, nil)
}

func (c *Client) Version() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.UPDATE_VERSION, nil)
}

func (c *Client) Ready() (*common.ReadyResponse, error) {
	return invoke[common.ReadyResponse](c, common.UPDATE_READY, nil)
}
