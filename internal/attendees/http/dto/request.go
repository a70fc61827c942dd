package dto

import (
	validation "github.com/jellydator/validation"
)

// FlagsRequest sets the attendee status flags. Both values are required
// because updating re-encrypts both columns.
type FlagsRequest struct {
	CheckedIn *bool `json:"checked_in"`
	Refunded  *bool `json:"refunded"`
}

// Validate checks the request fields.
func (r FlagsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CheckedIn, validation.NotNil),
		validation.Field(&r.Refunded, validation.NotNil),
	)
}
