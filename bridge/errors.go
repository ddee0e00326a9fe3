package bridge

import "errors"

// Errors detected locally by the bridge. Peer-reported outcomes and request
// validation reuse the wire package's error kinds, so callers can tell a
// local wait timeout (ErrTimeout) apart from a peer-reported transfer
// timeout (wire.ErrTransferTimeout).
var (
	// ErrTimeout means no matching response arrived within the
	// transaction timeout.
	ErrTimeout = errors.New("bridge: transaction timed out")

	// ErrProtocol means the peer answered success but the response did
	// not have the expected shape.
	ErrProtocol = errors.New("bridge: protocol error")
)
