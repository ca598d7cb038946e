package services

import "errors"

var (
	// ErrNotRegistered is returned when a role was never registered this session.
	ErrNotRegistered = errors.New("service not registered")
	// ErrWrongType is returned when a role holds a value of another type.
	ErrWrongType = errors.New("service has unexpected type")
)
