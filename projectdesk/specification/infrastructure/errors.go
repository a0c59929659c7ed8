package specification

import (
	"errors"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

var (
	ErrUnknownEntity       = errors.New("unknown entity")
	ErrUnknownPath         = errors.New("unknown path")
	ErrInvalidSchema       = errors.New("invalid schema")
	ErrTypeMismatch        = errors.New("value does not match field kind")
	ErrUnsupportedOperator = errors.New("operator is not supported for field kind")
	ErrUnsupportedNode     = errors.New("predicate node is not supported by the store")
	ErrUnknownSortField    = errors.New("unknown sort field")
	ErrInvalidEnumValue    = s.ErrInvalidEnumValue
)
