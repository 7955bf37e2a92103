package machine

import "io"

// A Transport is the byte link to the machine.
type Transport interface {
	io.Writer

	// Available returns the number of received bytes that can be read
	// without blocking.
	Available() (int, error)

	// Read returns already received bytes.
	Read([]byte) (int, error)
}

// An Operator is the human at the machine.
type Operator interface {
	// Prompt shows message and blocks until it is acknowledged.
	Prompt(message string) error
}
