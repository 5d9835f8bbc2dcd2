package cgt

import "errors"

// All core errors are fatal: the run either produces a complete, internally
// consistent set of statements or aborts on the first one of these.
var (
	// ErrMalformedTransaction reports a record with a missing or unparseable
	// timestamp or required field.
	ErrMalformedTransaction = errors.New("malformed transaction")

	// ErrUnknownPair reports a trade whose pair is not in the configured
	// decomposition table.
	ErrUnknownPair = errors.New("unknown pair")

	// ErrInsufficientLotVolume reports a disposal exceeding the total
	// remaining lot volume for an asset beyond the precision threshold.
	ErrInsufficientLotVolume = errors.New("insufficient lot volume")

	// ErrUnsupportedOperation reports an operation kind the statement
	// aggregator does not recognize.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrDuplicateFeeLoss reports a second CreateFeeLoss call on the same
	// statement.
	ErrDuplicateFeeLoss = errors.New("fee loss already created")

	// ErrZeroVolumeLot reports an attempt to construct a lot with zero volume.
	ErrZeroVolumeLot = errors.New("zero volume lot")
)
