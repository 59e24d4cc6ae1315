package api

import (
	"encoding/json"
	"errors"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/server"
	"github.com/pubdeck/pubdeck/pkg/credman/types"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

// accountConnectHandler stores an access token for a platform account.
// The token is encrypted at rest; it never appears in list responses.
func (s *Api) accountConnectHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ConnectParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_ACCOUNT_CONNECT, nil, err
	}
	if !m.Platform.Valid() {
		return common.UPDATE_ACCOUNT_CONNECT, nil, errors.New("unknown platform: " + string(m.Platform))
	}
	if m.AccountId == "" || m.AccessToken == "" {
		return common.UPDATE_ACCOUNT_CONNECT, nil, errors.New("account_id and access_token are required")
	}

	err := s.deps.Tokens.SetToken(types.AccountToken{
		Platform:    string(m.Platform),
		AccountId:   m.AccountId,
		UserId:      m.UserId,
		AccessToken: m.AccessToken,
		ExpiresAt:   m.ExpiresAt,
	})
	if err != nil {
		return common.UPDATE_ACCOUNT_CONNECT, nil, err
	}
	return common.UPDATE_ACCOUNT_CONNECT, &common.AccountInfo{
		Platform:  m.Platform,
		AccountId: m.AccountId,
		UserId:    m.UserId,
		ExpiresAt: m.ExpiresAt,
	}, nil
}

func (s *Api) accountListHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	accounts := s.deps.Tokens.ListAccounts()
	infos := make([]common.AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		infos = append(infos, common.AccountInfo{
			Platform:  publib.Platform(a.Platform),
			AccountId: a.AccountId,
			UserId:    a.UserId,
			ExpiresAt: a.ExpiresAt,
		})
	}
	return common.UPDATE_ACCOUNT_LIST, &common.AccountListResponse{
		Accounts: infos,
	}, nil
}
