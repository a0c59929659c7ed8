package specification

import "errors"

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrNotBoolean       = errors.New("the result is not a bool")
)
