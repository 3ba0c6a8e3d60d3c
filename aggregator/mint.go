package aggregator

import (
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
)

const (
	MinMintLength = 32
	MaxMintLength = 44
)

// ValidateMint checks the shape of a mint address before anything goes out on the wire.
// Only the length is checked unless strict is set, in which case the mint must also
// decode as a base58 public key.
func ValidateMint(mint string, strict bool) error {
	n := utf8.RuneCountInString(mint)
	if mint == "" || n < MinMintLength || n > MaxMintLength {
		return &Error{Kind: KindInvalidIdentifier, Message: MsgInvalidMint}
	}
	if strict {
		if _, err := solana.PublicKeyFromBase58(mint); err != nil {
			return &Error{Kind: KindInvalidIdentifier, Message: MsgInvalidMint, Err: err}
		}
	}
	return nil
}
