// Package uuid wraps google/uuid with gin parameter binding support.
package uuid

import (
	guuid "github.com/google/uuid"
)

type UUID struct {
	guuid.UUID
}

var Nil UUID

func New() UUID {
	return UUID{guuid.New()}
}

func NewString() string {
	return guuid.NewString()
}

// UnmarshalParam parses a path or form parameter into a UUID.
// An empty parameter unmarshals to the Nil UUID.
func (u *UUID) UnmarshalParam(p string) error {
	if p == "" {
		*u = Nil
		return nil
	}

	parsed, err := guuid.Parse(p)
	if err != nil {
		return err
	}

	*u = UUID{parsed}
	return nil
}
