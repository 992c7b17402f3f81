package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for uploads whose extension is neither .txt nor .pdf.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrDecode is matched by every *DecodeError through errors.Is.
	ErrDecode = errors.New("decode error")
	// ErrInvalidUTF8 is the cause carried by a DecodeError for malformed text uploads.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// DecodeError reports that the uploaded bytes could not be decoded as the declared kind.
type DecodeError struct {
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) true for any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func unsupported(filename string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}
