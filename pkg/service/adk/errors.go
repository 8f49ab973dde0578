package adk

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error taxonomy of the bridge. Every failure of CallADK wraps exactly
// one of these sentinels; match with errors.Is. None are retried
// internally.
var (
	ErrMissingCredential = goerr.New("missing access token")
	ErrTimeout           = goerr.New("timeout")
	ErrTransport         = goerr.New("http_error")
	ErrMissingLogs       = goerr.New("missing logs in response")
	ErrMalformedResponse = goerr.New("missing final text in response")
	ErrUnexpected        = goerr.New("unexpected")
)

var sentinels = []error{
	ErrMissingCredential,
	ErrTimeout,
	ErrTransport,
	ErrMissingLogs,
	ErrMalformedResponse,
	ErrUnexpected,
}

// isClientErr reports whether err already belongs to the taxonomy above.
func isClientErr(err error) bool {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
