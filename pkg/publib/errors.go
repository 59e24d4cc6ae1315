package publib

import "errors"

var (
	ErrPublicationNotFound = errors.New("publication you are looking for is not found")
	ErrInvalidTransition   = errors.New("publication status transition is not allowed")
	ErrNotEditable         = errors.New("publication is not editable in its current status")
	ErrNotDeletable        = errors.New("publication cannot be deleted in its current status")
	ErrNotSchedulable      = errors.New("publication cannot be scheduled in its current status")
	ErrNotPublishable      = errors.New("publication cannot be published in its current status")

	ErrAssetNotFound          = errors.New("asset you are looking for is not found")
	ErrAssetMissingURL        = errors.New("asset completed processing without a usable url")
	ErrAssetProcessingFailed  = errors.New("asset processing failed")
	ErrAssetProcessingTimeout = errors.New("asset did not finish processing in time")
)
