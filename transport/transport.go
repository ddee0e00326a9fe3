// Package transport provides the inter-processor message channels the
// bridge runs over. A transport delivers whole messages without corruption
// but gives no application-level guarantee: no acknowledgement, and no
// ordering across independent sends.
package transport

// Receiver consumes one inbound message. src names the channel the message
// arrived on. Receivers are called from the transport's read loop and must
// not block.
type Receiver func(b []byte, src string)

// Transport is one bound channel to the peer processor.
type Transport interface {
	// Send delivers b as one atomic message to the peer.
	Send(b []byte) error
	// Close tears the channel down; the read loop stops delivering.
	Close() error
}
