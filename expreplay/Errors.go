package expreplay

import "errors"

// BufferError implements errors unique to experience buffers.
type BufferError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *BufferError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause of a BufferError
func (e *BufferError) Unwrap() error {
	return e.Err
}

var errEmptyBuffer error = errors.New("buffer empty")

var errBufferOverflow = errors.New("buffer full, must be drained before " +
	"appending")

// IsEmptyBuffer returns whether or not an error reports that a sample
// was requested from a buffer before anything was appended to it.
func IsEmptyBuffer(err error) bool {
	if bufferErr, ok := err.(*BufferError); ok {
		err = bufferErr.Err
	}
	return err == errEmptyBuffer
}

// IsBufferOverflow returns whether or not an error reports that a
// rollout buffer was appended to beyond its capacity without an
// intervening drain.
func IsBufferOverflow(err error) bool {
	if bufferErr, ok := err.(*BufferError); ok {
		err = bufferErr.Err
	}
	return err == errBufferOverflow
}
