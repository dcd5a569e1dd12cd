package domain

import "errors"

var (
	ErrNotFound           = errors.New("project not found")
	ErrNameRequired       = errors.New("project name required")
	ErrInvalidProjectFile = errors.New("invalid project file")
	ErrInvalidLUTType     = errors.New("invalid lut type")
)
