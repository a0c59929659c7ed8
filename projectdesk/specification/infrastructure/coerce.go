package specification

import (
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Coerce converts value to the canonical Go type of the field kind:
// string, int64, float64, time.Time or bool. Timestamps also accept
// RFC 3339 strings and numbers accept their decimal string form; nothing
// else is converted implicitly. Enum values must belong to the declared set.
// Timestamps come back in UTC and unsigned integers above MaxInt64 are
// rejected. A nil value stays nil.
func Coerce(f FieldMapping, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
		value = rv.Interface()
	}
	mismatch := func() error {
		return errors.Wrapf(ErrTypeMismatch, "%s field \"%s\" got %T", f.Kind, f.Name, value)
	}
	switch f.Kind {
	case KindString:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case KindEnum:
		if rv.Kind() == reflect.String {
			v := rv.String()
			if !slices.Contains(f.Values, v) {
				return nil, errors.Wrapf(ErrInvalidEnumValue, "\"%s\" for field \"%s\"", v, f.Name)
			}
			return v, nil
		}
	case KindInteger:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt64 {
				return nil, mismatch()
			}
			return int64(rv.Uint()), nil
		case reflect.String:
			v, err := strconv.ParseInt(rv.String(), 10, 64)
			if err != nil {
				return nil, mismatch()
			}
			return v, nil
		}
	case KindNumber:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.String:
			v, err := strconv.ParseFloat(rv.String(), 64)
			if err != nil {
				return nil, mismatch()
			}
			return v, nil
		}
	case KindTimestamp:
		switch v := value.(type) {
		case time.Time:
			return v.UTC(), nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, mismatch()
			}
			return t.UTC(), nil
		}
	case KindBoolean:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	}
	return nil, mismatch()
}
