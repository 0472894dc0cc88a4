package archive

import (
	"errors"
	"fmt"
)

// ErrShortInput is returned when a compressed archive or directory is
// truncated before its declared length.
var ErrShortInput = errors.New("archive input shorter than its declared length")

func errShortInput(got int) error {
	return fmt.Errorf("%w: have %d bytes", ErrShortInput, got)
}
