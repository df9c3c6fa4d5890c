package graph

import "errors"

// AgeUnknown is the sentinel age for users whose age was not supplied.
// Extractors skip unknown ages; they are never treated as zero.
const AgeUnknown = -1

// User represents a registered account in the social graph.
type User struct {
	// ID is the unique, stable user identifier.
	ID string `json:"id"`

	// Age is the user's age in years, or AgeUnknown if not supplied.
	Age int `json:"age"`

	// Attrs contains arbitrary profile attributes (display name,
	// locale, platform handles). The engine treats them as opaque.
	Attrs map[string]string `json:"attrs,omitempty"`
}

// NewUser creates a User with the given ID and age. The Attrs map is
// initialized so callers can populate it without a nil check.
func NewUser(id string, age int) *User {
	return &User{
		ID:    id,
		Age:   age,
		Attrs: make(map[string]string),
	}
}

// WithAttr sets a single profile attribute and returns the user for
// method chaining.
func (u *User) WithAttr(key, value string) *User {
	if u.Attrs == nil {
		u.Attrs = make(map[string]string)
	}
	u.Attrs[key] = value
	return u
}

// AgeKnown reports whether the user's age was supplied at registration.
func (u *User) AgeKnown() bool {
	return u.Age >= 0
}

// IsAdult reports whether the user is at or above the given adult age
// boundary. Returns false when the age is unknown.
func (u *User) IsAdult(adultAge int) bool {
	return u.AgeKnown() && u.Age >= adultAge
}

// IsMinor reports whether the user is below the given adult age boundary.
// Returns false when the age is unknown, so an unknown age is neither
// adult nor minor.
func (u *User) IsMinor(adultAge int) bool {
	return u.AgeKnown() && u.Age < adultAge
}

// Validate checks that the user has all required fields set correctly.
// Returns an error if ID is empty or the age is negative but not the
// AgeUnknown sentinel.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("user ID is required")
	}
	if u.Age < AgeUnknown {
		return errors.New("age must be non-negative or AgeUnknown")
	}
	return nil
}
