package interfaces

// StreamTransport is the outbound side of a streamed answer.
type StreamTransport interface {
	// Begin commits the response headers. It is called once, right before the
	// first fragment is written, or when an empty answer completes.
	Begin() error
	// Write sends one fragment and flushes it to the client.
	Write(fragment string) error
	// End finishes the stream.
	End() error
	// Done is closed when the client has gone away. It may be nil if the
	// transport cannot detect disconnects.
	Done() <-chan struct{}
}
