package testing

import "github.com/LeJamon/coveredcall/internal/core/tx"

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Result is the typed result code.
	Result tx.Result

	// Success indicates whether the transaction was successfully applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Hash identifies the submitted transaction.
	Hash [32]byte

	// Metadata lists the entries the transaction touched.
	Metadata *tx.Metadata
}

func resultFrom(r tx.ApplyResult) TxResult {
	return TxResult{
		Code:     r.Result.String(),
		Result:   r.Result,
		Success:  r.Result.IsSuccess(),
		Message:  r.Message,
		Hash:     r.Hash,
		Metadata: r.Metadata,
	}
}

// IsSuccess returns true if the result code indicates success.
func (r TxResult) IsSuccess() bool {
	return r.Result.IsSuccess()
}

// IsClaimed returns true for tec codes.
func (r TxResult) IsClaimed() bool {
	return r.Result.IsTec()
}

// IsRetry returns true if the result code indicates a retry is possible.
func (r TxResult) IsRetry() bool {
	return r.Result.IsTer()
}

// IsMalformed returns true if the result code indicates the transaction is malformed.
func (r TxResult) IsMalformed() bool {
	return r.Result.IsTem()
}

// IsFailed returns true for tef codes.
func (r TxResult) IsFailed() bool {
	return r.Result.IsTef()
}
