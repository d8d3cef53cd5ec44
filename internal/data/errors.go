package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrJobIDRequired          = errors.New("job_id is required")
	ErrUserIDRequired         = errors.New("user_id is required")
	ErrPresentationIDRequired = errors.New("presentation id is required")
	ErrNilTask                = errors.New("task is required")
)
