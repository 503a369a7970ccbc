package model

import "github.com/google/uuid"

// Subject is the real-world entity a session pertains to, embedded in the
// session document. Code is a free-text identifier chosen by the data source;
// ID is the stable identity and is required once assigned. All sessions in a
// project sharing the same code must converge to the same ID.
type Subject struct {
	ID   *uuid.UUID `json:"_id,omitempty"`
	Code string     `json:"code,omitempty"`

	Sex string `json:"sex,omitempty"`
	Age *int   `json:"age,omitempty"`

	Info map[string]any `json:"info,omitempty"`
}
