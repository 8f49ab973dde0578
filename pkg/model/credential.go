package model

import "time"

// Credential is a short-lived bearer token for the reasoning engine,
// paired with its absolute expiry. Token and expiry are always written
// and read together as one unit.
type Credential struct {
	Token  string
	Expiry time.Time
}

// Expired reports whether the credential is no longer usable at the
// given point in time.
func (c Credential) Expired(now time.Time) bool {
	return !c.Expiry.After(now)
}
