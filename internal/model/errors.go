package model

import "errors"

// ErrEventFull is returned when registering at capacity.
var ErrEventFull = errors.New("event is fully booked")

// ErrInvalidEvent is returned when a catalog entry fails validation.
var ErrInvalidEvent = errors.New("invalid event")
