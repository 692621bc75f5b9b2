package ocr

import (
	"errors"
	"fmt"
)

// FileMissingError reports that the document to process does not exist or is
// not readable. Deterministic, never retried.
type FileMissingError struct {
	Path string
}

func (e *FileMissingError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// DecryptionError reports that neither the supplied password nor the empty
// password unlocked the document. A wrong credential stays wrong, so this is
// never retried.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("pdf is encrypted and the password is not valid: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// ConversionError reports a rasterization failure. Renderer resource
// exhaustion is plausibly transient, so conversion failures are retryable.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting pdf to images: %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// IsFatal reports whether an attempt failure is deterministic given the same
// input. Fatal failures finalize the job immediately without consuming the
// retry budget; everything else (conversion failures, transient I/O,
// timeouts) is considered retryable.
func IsFatal(err error) bool {
	var fileMissing *FileMissingError
	var decryption *DecryptionError
	return errors.As(err, &fileMissing) || errors.As(err, &decryption)
}
