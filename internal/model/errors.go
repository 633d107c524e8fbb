package model

import "errors"

var (
	ErrInvalidTimeFormat = errors.New("time of day must be HH:MM")
	ErrInvalidTimeValue  = errors.New("time of day out of range")
	ErrInvalidRule       = errors.New("invalid recurrence rule")
)
