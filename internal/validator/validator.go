// Package validator checks metadata records, either against a remote
// validator service or locally with a compiled JSON Schema.
package validator

import (
	"errors"

	"github.com/huangsam/schemadiff/internal/contract"
)

// UnrecognisedResponse is reported when the remote service returns
// something other than a JSON list.
const UnrecognisedResponse = "Unrecognised validator response"

// ErrUnreachable is returned by Ping when the remote service cannot be contacted.
var ErrUnreachable = errors.New("validator endpoint unreachable")

// New returns a local validator when local is set, otherwise a remote one for url.
func New(url string, local bool) contract.Validator {
	if local {
		return NewLocal()
	}
	return NewRemote(url)
}
