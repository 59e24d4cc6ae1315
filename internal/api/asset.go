package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
)

// assetUploadHandler uploads a local file to the asset service and blocks
// until processing finishes or the polling budget runs out.
func (s *Api) assetUploadHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.AssetUploadParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_ASSET_UPLOAD, nil, err
	}
	if m.UserId == "" {
		return common.UPDATE_ASSET_UPLOAD, nil, errors.New("user_id is required")
	}
	if m.FilePath == "" {
		return common.UPDATE_ASSET_UPLOAD, nil, errors.New("file_path is required")
	}

	media, err := s.deps.Poller.UploadFiles(context.Background(), m.UserId, []string{m.FilePath})
	if err != nil {
		return common.UPDATE_ASSET_UPLOAD, nil, err
	}

	asset, err := s.manager.Store().GetAsset(context.Background(), media[0].AssetID)
	if err != nil {
		return common.UPDATE_ASSET_UPLOAD, nil, err
	}
	return common.UPDATE_ASSET_UPLOAD, &common.AssetResponse{
		Asset: asset,
	}, nil
}

func (s *Api) assetGetHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputAssetId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_ASSET_GET, nil, err
	}
	if m.AssetId == "" {
		return common.UPDATE_ASSET_GET, nil, errors.New("asset_id is required")
	}

	asset, err := s.manager.Store().GetAsset(context.Background(), m.AssetId)
	if err != nil {
		return common.UPDATE_ASSET_GET, nil, err
	}
	return common.UPDATE_ASSET_GET, &common.AssetResponse{
		Asset: asset,
	}, nil
}
