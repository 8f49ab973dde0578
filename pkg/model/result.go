package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidVerdict = goerr.New("invalid verdict")
)

type Verdict string

const (
	VerdictVerified   Verdict = "verified"
	VerdictUnverified Verdict = "unverified"
)

// Validate checks if the verdict is valid
func (v Verdict) Validate() error {
	switch v {
	case VerdictVerified, VerdictUnverified:
		return nil
	default:
		return ErrInvalidVerdict
	}
}

// QueryResult is the caller-facing outcome of one reasoning engine call.
// Created once per query and immutable afterwards.
type QueryResult struct {
	Verdict    Verdict  `json:"verdict"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	RawFinal   string   `json:"raw_final"`
}

// Metadata carries request context supplied by the messaging backend.
// Fields other than User are passed through untouched.
type Metadata struct {
	Channel string `json:"channel,omitempty"`
	User    *User  `json:"user,omitempty"`
}

type User struct {
	WAFrom string `json:"wa_from,omitempty"`
	ID     string `json:"id,omitempty"`
}

// UserID derives the engine-facing user identifier: the WhatsApp sender
// address if present, otherwise the backend user ID, otherwise "anonymous".
func (m Metadata) UserID() string {
	if m.User != nil {
		if m.User.WAFrom != "" {
			return m.User.WAFrom
		}
		if m.User.ID != "" {
			return m.User.ID
		}
	}
	return "anonymous"
}
