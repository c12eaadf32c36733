package upload

import "errors"

var (
	ErrInvalidMappings = errors.New("invalid mappings document")
	ErrInvalidTags     = errors.New("invalid tags document")
	ErrEnqueueUpload   = errors.New("failed to enqueue upload job")
)
