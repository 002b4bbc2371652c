package catalog

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrInvalidCover   = errors.New("invalid cover")
	ErrInvalidMember  = errors.New("invalid group member")
	ErrAlreadyGrouped = errors.New("entry already belongs to a group")
	ErrEmptyGroup     = errors.New("cannot create empty group")
)
