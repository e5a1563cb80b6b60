package mensura

import "errors"

// Index errors
var (
	// ErrInvalidIndex indicates an index outside the valid range of a list.
	// It is a programming error: the list primitives panic with an error
	// wrapping it instead of returning it.
	ErrInvalidIndex = errors.New("index out of range")
)

// Variant errors
var (
	// ErrInvalidVariantArrangement indicates that an edit against a
	// non-default version would need a reading boundary that cuts through a
	// ligature, a variant marker or two different locations. The edit is
	// refused before anything is changed.
	ErrInvalidVariantArrangement = errors.New("invalid variant arrangement")

	// ErrStaleLocation indicates that a variant location no longer exists.
	ErrStaleLocation = errors.New("variant location not found")

	// ErrNotAdjacent indicates that two locations cannot be combined because
	// default content lies between them.
	ErrNotAdjacent = errors.New("variant locations are not adjacent")

	// ErrNoReading indicates that a version has no reading at a location.
	ErrNoReading = errors.New("version has no reading at location")

	// ErrVersionHasReading indicates that a version already has a reading at
	// a location.
	ErrVersionHasReading = errors.New("version already has a reading at location")

	// ErrDefaultVersion indicates an operation that is not allowed for the
	// default version, e.g. attaching it to a reading.
	ErrDefaultVersion = errors.New("operation not allowed for the default version")

	// ErrUnknownVersion indicates a version name or ID that does not exist.
	ErrUnknownVersion = errors.New("unknown version")
)

// Event errors
var (
	// ErrProtectedEvent indicates an event that cannot be inserted or deleted
	// directly, such as the section end or a variant marker.
	ErrProtectedEvent = errors.New("event cannot be edited directly")

	// ErrWrongKind indicates that an operation does not apply to the kind of
	// the target event.
	ErrWrongKind = errors.New("operation does not apply to event kind")

	// ErrBadNotation indicates unparseable event notation.
	ErrBadNotation = errors.New("bad event notation")
)
