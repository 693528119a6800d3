package syncconf

import "errors"

var (
	ErrNoSource      = errors.New("no source calendar specified")
	ErrNoDestination = errors.New("no destination calendar specified")
	ErrNoPrefix      = errors.New("no prefix specified")
	ErrInvalidPrefix = errors.New("invalid prefix")
	ErrInvalidWindow = errors.New("invalid sync window")
)
