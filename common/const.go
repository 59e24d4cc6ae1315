package common

// MaxMessageSize bounds a single framed socket message.
const MaxMessageSize = 4 << 20

type UpdateType string

const (
	UPDATE_CREATE       UpdateType = "publication.create"
	UPDATE_UPDATE       UpdateType = "publication.update"
	UPDATE_SCHEDULE     UpdateType = "publication.schedule"
	UPDATE_RESCHEDULE   UpdateType = "publication.reschedule"
	UPDATE_CANCEL       UpdateType = "publication.cancel"
	UPDATE_PUBLISH_NOW  UpdateType = "publication.publishNow"
	UPDATE_DELETE       UpdateType = "publication.delete"
	UPDATE_LIST         UpdateType = "publication.list"
	UPDATE_STATUS       UpdateType = "publication.status"
	UPDATE_REFETCH      UpdateType = "calendar.refetch"
	UPDATE_EVENTS       UpdateType = "calendar.events"
	UPDATE_ASSET_UPLOAD UpdateType = "asset.upload"
	UPDATE_ASSET_GET    UpdateType = "asset.get"

	UPDATE_ACCOUNT_CONNECT UpdateType = "account.connect"
	UPDATE_ACCOUNT_LIST    UpdateType = "account.list"

	UPDATE_VERSION UpdateType = "system.getVersion"
	UPDATE_READY   UpdateType = "system.ready"
	UPDATE_LOADING UpdateType = "system.loading"
)
