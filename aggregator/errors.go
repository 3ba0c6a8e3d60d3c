package aggregator

import "github.com/pkg/errors"

// Kind classifies why a token could not be aggregated.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidIdentifier
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "InvalidIdentifier"
	case KindNotFound:
		return "NotFound"
	default:
		return "InternalError"
	}
}

// Client-facing messages. Upstream details never end up in them.
const (
	MsgInvalidMint = "Mint address must be a valid Solana address (32-44 characters)"
	MsgNoPairs     = "No trading pairs found for this mint address. Token may not be listed yet."
	MsgNoData      = "No data available for this mint address"
	MsgInternal    = "Failed to fetch token data from upstream provider"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var aggErr *Error
	if errors.As(err, &aggErr) {
		return aggErr.Kind
	}
	return KindInternal
}
