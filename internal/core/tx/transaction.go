package tx

import (
	"errors"
	"fmt"
	"strings"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccount         = errors.New("invalid account")
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks the transaction without reading ledger state. Errors
	// carry a tem code prefix, e.g. "temBAD_AMOUNT: ...".
	Validate() error
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types
type Common struct {
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`
	Sequence        uint32 `json:"Sequence"`
	SigningPubKey   string `json:"SigningPubKey,omitempty"`
	TxnSignature    string `json:"TxnSignature,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account == "" {
		return errors.New("temBAD_SRC_ACCOUNT: Account is required")
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return errors.New("temBAD_SRC_ACCOUNT: Account is not a valid address")
	}
	if c.TransactionType == "" {
		return errors.New("temINVALID: TransactionType is required")
	}
	return nil
}

// AccountID decodes the source account.
func (c *Common) AccountID() ([20]byte, error) {
	id, err := addresscodec.DecodeAccountID(c.Account)
	if err != nil {
		return [20]byte{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return id, nil
}

// BaseTx provides a base implementation for transactions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// NewBaseTx creates a new base transaction
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}

// ParseValidationError extracts the result code from a Validate error
// message such as "temBAD_AMOUNT: amount must be positive". Messages without
// a known prefix map to temINVALID.
func ParseValidationError(err error) Result {
	msg := err.Error()
	code, _, found := strings.Cut(msg, ":")
	if !found {
		code = msg
	}
	if r, ok := ResultFromName(strings.TrimSpace(code)); ok && r.IsTem() {
		return r
	}
	return TemINVALID
}

// DecodeAddress decodes a required address field for Validate.
func DecodeAddress(field, address string) ([20]byte, error) {
	if address == "" {
		return [20]byte{}, fmt.Errorf("temMALFORMED: %s is required", field)
	}
	id, err := addresscodec.DecodeAccountID(address)
	if err != nil {
		return [20]byte{}, fmt.Errorf("temMALFORMED: %s is not a valid address", field)
	}
	return id, nil
}
