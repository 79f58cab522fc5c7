package window

import (
	"errors"
	"fmt"
)

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
)

func invalidHop(hop, size int) error {
	return fmt.Errorf("window hop must be in [1,%d]: %d", size, hop)
}

func unknownType(name string) error {
	return fmt.Errorf("unknown window type: %q", name)
}
