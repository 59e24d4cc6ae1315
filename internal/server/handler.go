package server

import (
	"encoding/json"

	"github.com/pubdeck/pubdeck/common"
)

// HandlerFunc is one publication operation on the socket surface. A handler
// gets the caller's connection (so it can attach it to the pool for status
// pushes), the broadcast pool, and the raw request body; it returns the
// update type to answer with, the response payload, and any error.
type HandlerFunc func(
	conn *SyncConn,
	pool *Pool,
	body json.RawMessage,
) (
	common.UpdateType,
	any,
	error,
)
