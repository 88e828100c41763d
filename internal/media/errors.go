package media

import "errors"

var (
	// ErrStorageUnavailable indicates no object store is configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
	// ErrReaperClosed is returned when deletions are scheduled after shutdown.
	ErrReaperClosed = errors.New("asset reaper closed")
	// ErrEmptyUpload indicates an upload without content.
	ErrEmptyUpload = errors.New("empty upload")
)
