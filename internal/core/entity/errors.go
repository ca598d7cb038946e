package entity

import "errors"

var (
	// ErrComponentMissing is returned by Require when a mandatory component is absent.
	ErrComponentMissing = errors.New("component missing")
	// ErrComponentSetFrozen is returned when a component is added after the entity became active.
	ErrComponentSetFrozen = errors.New("component set is frozen")
	// ErrDuplicateComponent is returned when an entity already holds a component of the same kind.
	ErrDuplicateComponent = errors.New("duplicate component kind")
	// ErrDisposed is returned for operations on a disposed entity.
	ErrDisposed = errors.New("entity disposed")
	// ErrAlreadyRegistered is returned when registering an entity twice.
	ErrAlreadyRegistered = errors.New("entity already registered")
	// ErrRoleNotDesignated is returned when a well-known role has no entity yet.
	ErrRoleNotDesignated = errors.New("role not designated")
	ErrNilEntity         = errors.New("nil entity")
)
