package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("container not found")
	ErrForbidden = errors.New("insufficient access to container")

	// Container type strings are singular; the plural form names the
	// collection.
	ErrPluralContainerType = errors.New("container type cannot be plural")
)

// ValidationError reports a required ingestion key missing from the incoming
// metadata. It carries the original payload so the caller can log it.
type ValidationError struct {
	Reason   string
	Metadata IngestMetadata
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ingestion metadata: %s", e.Reason)
}
