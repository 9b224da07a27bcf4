package xcf

import "errors"

// Sentinel errors. Callers should use errors.Is against these; wrapped
// context (field/state/property names) is added with fmt.Errorf at the
// point of failure.
var (
	// ErrWrongState is returned when an operation is not legal in the
	// session's current state.
	ErrWrongState = errors.New("xcf: operation not valid in current state")

	// ErrUnknownField is returned when set is called with a field not
	// recognized at the current level.
	ErrUnknownField = errors.New("xcf: unknown or inapplicable field")

	// ErrTooManyChildren is returned when add_layer/add_channel is called
	// after the declared count has already been reached.
	ErrTooManyChildren = errors.New("xcf: too many layers or channels")

	// ErrVersionTooLow is returned when a requested feature demands a
	// higher container version than the session declared.
	ErrVersionTooLow = errors.New("xcf: feature requires a higher container version")

	// ErrVersionTooLarge is returned when |version| > 999.
	ErrVersionTooLarge = errors.New("xcf: version out of range")

	// ErrUnsupportedCompression is returned when RLE compression is
	// selected; it is a recognized but rejected value.
	ErrUnsupportedCompression = errors.New("xcf: RLE compression is not supported")

	// ErrUnsupportedChannelSize is returned when the image precision maps
	// to a channel_size outside {1, 2, 4, 8}.
	ErrUnsupportedChannelSize = errors.New("xcf: unsupported channel size")

	// ErrIncompleteSession is returned by Close when state != Main or
	// outstanding layers/channels remain.
	ErrIncompleteSession = errors.New("xcf: session closed with outstanding layers or channels")

	// ErrAlreadyInError marks an operation refused because the session was
	// already sticky-failed by a prior error.
	ErrAlreadyInError = errors.New("xcf: session is in error state")
)
