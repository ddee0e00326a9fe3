package wire

import (
	"errors"
	"fmt"
)

// ReturnCode is the one-byte outcome reported by the peer in a response.
type ReturnCode uint8

const (
	RetSuccess ReturnCode = iota
	RetFailed
	RetInvalidParameter
	RetInvalidMessage
	RetInvalidState
	RetNoMemory
	RetEventTimeout
	RetAlreadyQueued
	RetNotQueued
	RetTransferTimeout
	RetPeerNotReady
	RetCommFailure
	RetServiceNotFound
	RetVersionUnsupported
)

// Error kinds for peer-reported outcomes and local validation failures.
// ErrTransferTimeout is the peer reporting that its own transfer timed out;
// it is deliberately distinct from the bridge's local wait timeout.
var (
	ErrFailed             = errors.New("wire: request failed")
	ErrInvalidParameter   = errors.New("wire: invalid parameter")
	ErrInvalidMessage     = errors.New("wire: invalid message")
	ErrInvalidState       = errors.New("wire: operation in invalid state")
	ErrNoMemory           = errors.New("wire: peer out of memory")
	ErrEventTimeout       = errors.New("wire: peer timed out waiting for event")
	ErrAlreadyQueued      = errors.New("wire: node already queued")
	ErrNotQueued          = errors.New("wire: node not queued")
	ErrTransferTimeout    = errors.New("wire: peer reported transfer timeout")
	ErrPeerNotReady       = errors.New("wire: peer core not ready")
	ErrCommFailure        = errors.New("wire: communication failure")
	ErrServiceNotFound    = errors.New("wire: no service for request")
	ErrVersionUnsupported = errors.New("wire: service version unsupported")
)

var retErrors = map[ReturnCode]error{
	RetFailed:             ErrFailed,
	RetInvalidParameter:   ErrInvalidParameter,
	RetInvalidMessage:     ErrInvalidMessage,
	RetInvalidState:       ErrInvalidState,
	RetNoMemory:           ErrNoMemory,
	RetEventTimeout:       ErrEventTimeout,
	RetAlreadyQueued:      ErrAlreadyQueued,
	RetNotQueued:          ErrNotQueued,
	RetTransferTimeout:    ErrTransferTimeout,
	RetPeerNotReady:       ErrPeerNotReady,
	RetCommFailure:        ErrCommFailure,
	RetServiceNotFound:    ErrServiceNotFound,
	RetVersionUnsupported: ErrVersionUnsupported,
}

var retNames = map[ReturnCode]string{
	RetSuccess:            "success",
	RetFailed:             "failed",
	RetInvalidParameter:   "invalid parameter",
	RetInvalidMessage:     "invalid message",
	RetInvalidState:       "invalid state",
	RetNoMemory:           "out of memory",
	RetEventTimeout:       "event timeout",
	RetAlreadyQueued:      "already queued",
	RetNotQueued:          "not queued",
	RetTransferTimeout:    "transfer timeout",
	RetPeerNotReady:       "peer not ready",
	RetCommFailure:        "communication failure",
	RetServiceNotFound:    "service not found",
	RetVersionUnsupported: "version unsupported",
}

// Err maps the code to its error kind. Success maps to nil; codes outside
// the table map to the generic ErrFailed rather than failing hard.
func (rc ReturnCode) Err() error {
	if rc == RetSuccess {
		return nil
	}
	if err, ok := retErrors[rc]; ok {
		return err
	}
	return fmt.Errorf("%w: unknown return code %d", ErrFailed, uint8(rc))
}

func (rc ReturnCode) String() string {
	if s, ok := retNames[rc]; ok {
		return s
	}
	return fmt.Sprintf("return code %d", uint8(rc))
}
