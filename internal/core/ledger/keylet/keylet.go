package keylet

import (
	"encoding/binary"
	"errors"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	crypto "github.com/LeJamon/coveredcall/internal/crypto/common"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Space identifiers for keylet generation
const (
	spaceAccount   uint16 = 'a' // Account root
	spaceMint      uint16 = 'M' // Token mint
	spaceHolding   uint16 = 'h' // Token holding
	spaceOption    uint16 = 'c' // Covered call contract
	spaceVault     uint16 = 'v' // Option escrow vault
	spaceMark      uint16 = 'm' // Expiry mark
	spacePriceFeed uint16 = 'p' // Oracle price feed
)

// MaxSalt is the first salt tried when deriving an option address.
const MaxSalt uint8 = 255

var ErrNoOffCurveSalt = errors.New("no salt yields an off-curve option address")

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Account returns the keylet for an account root entry.
func Account(accountID [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(spaceAccount, accountID[:]),
	}
}

// MintID derives the identifier of the mint created by issuer at sequence.
func MintID(issuer [20]byte, sequence uint32) [20]byte {
	seq := make([]byte, 4)
	binary.LittleEndian.PutUint32(seq, sequence)
	key := indexHash(spaceMint, issuer[:], seq)

	var id [20]byte
	copy(id[:], key[:20])
	return id
}

// Mint returns the keylet for a mint entry.
func Mint(mintID [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeMint,
		Key:  indexHash(spaceMint, mintID[:]),
	}
}

// Holding returns the keylet for owner's balance of mint.
func Holding(owner, mint [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeHolding,
		Key:  indexHash(spaceHolding, owner[:], mint[:]),
	}
}

// OptionTerms are the immutable terms that identify an option contract.
type OptionTerms struct {
	Seller      [20]byte
	Buyer       [20]byte
	BaseMint    [20]byte
	QuoteMint   [20]byte
	BaseAmount  uint64
	QuoteAmount uint64
	Expiry      int64
}

// TermsOf extracts the identifying terms of a stored option.
func TermsOf(o *entry.OptionContract) OptionTerms {
	return OptionTerms{
		Seller:      o.Seller,
		Buyer:       o.Buyer,
		BaseMint:    o.BaseMint,
		QuoteMint:   o.QuoteMint,
		BaseAmount:  o.BaseAmount,
		QuoteAmount: o.QuoteAmount,
		Expiry:      o.Expiry,
	}
}

func (t OptionTerms) seeds() [][]byte {
	return [][]byte{
		t.Seller[:],
		t.Buyer[:],
		t.BaseMint[:],
		t.QuoteMint[:],
		le64(t.BaseAmount),
		le64(t.QuoteAmount),
		le64(uint64(t.Expiry)),
	}
}

// OptionWithSalt returns the option keylet for terms and an explicit salt.
func OptionWithSalt(t OptionTerms, salt uint8) Keylet {
	seeds := append(t.seeds(), []byte{salt})
	return Keylet{
		Type: entry.TypeOptionContract,
		Key:  indexHash(spaceOption, seeds...),
	}
}

// Option finds the canonical keylet for terms: the highest salt whose key
// is not the x coordinate of a secp256k1 point. The derived address then
// has no private key.
func Option(t OptionTerms) (Keylet, uint8, error) {
	for salt := int(MaxSalt); salt >= 0; salt-- {
		k := OptionWithSalt(t, uint8(salt))
		if !IsOnCurve(k.Key) {
			return k, uint8(salt), nil
		}
	}
	return Keylet{}, 0, ErrNoOffCurveSalt
}

// IsOnCurve reports whether key is the x coordinate of a point on secp256k1.
func IsOnCurve(key [32]byte) bool {
	compressed := make([]byte, 0, secp256k1.PubKeyBytesLenCompressed)
	compressed = append(compressed, secp256k1.PubKeyFormatCompressedEven)
	compressed = append(compressed, key[:]...)
	_, err := secp256k1.ParsePubKey(compressed)
	return err == nil
}

// OptionAddress returns the account id that owns an option's vaults.
func OptionAddress(k Keylet) [20]byte {
	var addr [20]byte
	copy(addr[:], k.Key[:20])
	return addr
}

// Vault returns the keylet for the escrow vault of option for mint. The
// vault holding is owned by OptionAddress(option).
func Vault(option Keylet, mint [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeHolding,
		Key:  indexHash(spaceVault, option.Key[:], mint[:]),
	}
}

// ExpiryMark returns the keylet for the mark shared by every option that
// expires at expiry.
func ExpiryMark(expiry int64) Keylet {
	return Keylet{
		Type: entry.TypeExpiryMark,
		Key:  indexHash(spaceMark, le64(uint64(expiry))),
	}
}

// PriceFeed returns the keylet for a publisher's price feed.
func PriceFeed(publisher [20]byte, feedID [32]byte) Keylet {
	return Keylet{
		Type: entry.TypePriceFeed,
		Key:  indexHash(spacePriceFeed, publisher[:], feedID[:]),
	}
}
