package stretch

import "errors"

var (
	// ErrInvalidChannels reports a channel count < 1.
	ErrInvalidChannels = errors.New("stretch: invalid channel count")
	// ErrInvalidBlockLength reports a block length below the supported minimum.
	ErrInvalidBlockLength = errors.New("stretch: invalid block length")
	// ErrInvalidInterval reports an interval outside [1, block length].
	ErrInvalidInterval = errors.New("stretch: invalid interval")
	// ErrInvalidSampleRate reports a non-positive or non-finite sample rate.
	ErrInvalidSampleRate = errors.New("stretch: invalid sample rate")
	// ErrInvalidFactor reports a non-positive or non-finite multiplier.
	ErrInvalidFactor = errors.New("stretch: invalid factor")
	// ErrInvalidFrequency reports a negative or non-finite frequency.
	ErrInvalidFrequency = errors.New("stretch: invalid frequency")
)
