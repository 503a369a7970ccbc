package repo

import "errors"

var (
	ErrNotFound     = errors.New("document not found")
	ErrFileNotFound = errors.New("file entry not found")
)
