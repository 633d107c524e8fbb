package engine

import "errors"

var (
	ErrPermissionDenied = errors.New("notification permission not granted")
	ErrSchedulingFailed = errors.New("scheduling failed")
	ErrResetFailed      = errors.New("daily reset failed")
)
