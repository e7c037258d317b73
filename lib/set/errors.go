package set

import "errors"

var (
	ErrNullValue      = errors.New("[treeset] null value")
	ErrTypeMismatch   = errors.New("[treeset] element type mismatch")
	ErrNotComparable  = errors.New("[treeset] element is not comparable")
	ErrNoSuchElement  = errors.New("[treeset] no such element")
	ErrNotCollection  = errors.New("[treeset] source is not a collection")
	errOrderingAbsent = errors.New("neither Less nor Greater is defined")
)
