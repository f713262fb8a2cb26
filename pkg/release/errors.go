package release

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("release already exists")
	ErrNotFound        = errors.New("release not found")
	ErrCreationFailed  = errors.New("cannot create release")
)
