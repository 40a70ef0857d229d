package attendance

import "errors"

var (
	ErrInvalidScheduledTime = errors.New("scheduled time must be in HH:MM format")
)
