package difficulty

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid difficulty config")
	ErrUnknownVariant = errors.New("unknown difficulty variant")
)
