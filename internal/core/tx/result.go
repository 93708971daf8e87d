package tx

import (
	"errors"
	"fmt"
)

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem, ter.
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes (100-199): the transaction was well formed but rejected by
	// ledger state. Nothing is written.
	TecUNFUNDED             Result = 129
	TecNO_PERMISSION        Result = 139
	TecNO_ENTRY             Result = 140
	TecINSUFFICIENT_RESERVE Result = 141
	TecOVERSIZE             Result = 145
	TecDUPLICATE            Result = 149
	TecHAS_OBLIGATIONS      Result = 151

	TecEXPIRY_IN_PAST              Result = 180
	TecPRICE_IRRELEVANT            Result = 181
	TecPRICE_UNAVAILABLE           Result = 182
	TecOPTION_NOT_MARKED           Result = 183
	TecOPTION_ALREADY_BOUGHT       Result = 184
	TecOPTION_ALREADY_EXERCISED    Result = 185
	TecOPTION_NOT_PURCHASED        Result = 186
	TecOPTION_EXPIRED              Result = 187
	TecOPTION_NOT_EXPIRED          Result = 188
	TecOPTION_CANNOT_BE_CLOSED_YET Result = 189
	TecDECIMALS_MISMATCH           Result = 190

	// tef codes (-199 to -100): failure before or during apply
	TefINTERNAL      Result = -192
	TefPAST_SEQ      Result = -190
	TefBAD_SIGNATURE Result = -186

	// tem codes (-299 to -200): malformed transaction
	TemMALFORMED       Result = -299
	TemBAD_AMOUNT      Result = -298
	TemBAD_EXPIRATION  Result = -296
	TemBAD_SEQUENCE    Result = -283
	TemBAD_SIGNATURE   Result = -282
	TemBAD_SRC_ACCOUNT Result = -281
	TemINVALID         Result = -277
	TemUNKNOWN         Result = -264

	// ter codes (-99 to -1): retry later
	TerRETRY      Result = -99
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

var resultNames = map[Result]string{
	TesSUCCESS: "tesSUCCESS",

	TecUNFUNDED:             "tecUNFUNDED",
	TecNO_PERMISSION:        "tecNO_PERMISSION",
	TecNO_ENTRY:             "tecNO_ENTRY",
	TecINSUFFICIENT_RESERVE: "tecINSUFFICIENT_RESERVE",
	TecOVERSIZE:             "tecOVERSIZE",
	TecDUPLICATE:            "tecDUPLICATE",
	TecHAS_OBLIGATIONS:      "tecHAS_OBLIGATIONS",

	TecEXPIRY_IN_PAST:              "tecEXPIRY_IN_PAST",
	TecPRICE_IRRELEVANT:            "tecPRICE_IRRELEVANT",
	TecPRICE_UNAVAILABLE:           "tecPRICE_UNAVAILABLE",
	TecOPTION_NOT_MARKED:           "tecOPTION_NOT_MARKED",
	TecOPTION_ALREADY_BOUGHT:       "tecOPTION_ALREADY_BOUGHT",
	TecOPTION_ALREADY_EXERCISED:    "tecOPTION_ALREADY_EXERCISED",
	TecOPTION_NOT_PURCHASED:        "tecOPTION_NOT_PURCHASED",
	TecOPTION_EXPIRED:              "tecOPTION_EXPIRED",
	TecOPTION_NOT_EXPIRED:          "tecOPTION_NOT_EXPIRED",
	TecOPTION_CANNOT_BE_CLOSED_YET: "tecOPTION_CANNOT_BE_CLOSED_YET",
	TecDECIMALS_MISMATCH:           "tecDECIMALS_MISMATCH",

	TefINTERNAL:      "tefINTERNAL",
	TefPAST_SEQ:      "tefPAST_SEQ",
	TefBAD_SIGNATURE: "tefBAD_SIGNATURE",

	TemMALFORMED:       "temMALFORMED",
	TemBAD_AMOUNT:      "temBAD_AMOUNT",
	TemBAD_EXPIRATION:  "temBAD_EXPIRATION",
	TemBAD_SEQUENCE:    "temBAD_SEQUENCE",
	TemBAD_SIGNATURE:   "temBAD_SIGNATURE",
	TemBAD_SRC_ACCOUNT: "temBAD_SRC_ACCOUNT",
	TemINVALID:         "temINVALID",
	TemUNKNOWN:         "temUNKNOWN",

	TerRETRY:      "terRETRY",
	TerNO_ACCOUNT: "terNO_ACCOUNT",
	TerPRE_SEQ:    "terPRE_SEQ",
}

var resultMessages = map[Result]string{
	TesSUCCESS:                     "The transaction was applied.",
	TecUNFUNDED:                    "Insufficient token balance.",
	TecNO_PERMISSION:               "The signer is not allowed to perform this operation.",
	TecNO_ENTRY:                    "The referenced ledger entry does not exist.",
	TecINSUFFICIENT_RESERVE:        "Insufficient balance to fund the storage deposit.",
	TecOVERSIZE:                    "The amount exceeds the representable range.",
	TecDUPLICATE:                   "An entry with these terms already exists.",
	TecHAS_OBLIGATIONS:             "The holding still carries a balance.",
	TecEXPIRY_IN_PAST:              "The expiry is in the past.",
	TecPRICE_IRRELEVANT:            "The oracle price was not published in the expiry window or is older than the stored mark.",
	TecPRICE_UNAVAILABLE:           "The oracle has no fresh price for this feed.",
	TecOPTION_NOT_MARKED:           "No price has been marked for the option expiry.",
	TecOPTION_ALREADY_BOUGHT:       "The option has already been bought.",
	TecOPTION_ALREADY_EXERCISED:    "The option has already been exercised.",
	TecOPTION_NOT_PURCHASED:        "The option has not been bought.",
	TecOPTION_EXPIRED:              "The option has expired.",
	TecOPTION_NOT_EXPIRED:          "The option has not expired yet.",
	TecOPTION_CANNOT_BE_CLOSED_YET: "The option cannot be closed yet.",
	TecDECIMALS_MISMATCH:           "The transfer quotes the wrong mint decimals.",
	TefINTERNAL:                    "Internal error.",
	TefPAST_SEQ:                    "This sequence number has already passed.",
	TefBAD_SIGNATURE:               "The signature is invalid.",
	TemMALFORMED:                   "Malformed transaction.",
	TemBAD_AMOUNT:                  "An amount is missing or invalid.",
	TemBAD_EXPIRATION:              "The expiry is malformed.",
	TemBAD_SEQUENCE:                "The sequence number is malformed.",
	TemBAD_SIGNATURE:               "The signature is malformed.",
	TemBAD_SRC_ACCOUNT:             "The source account is malformed.",
	TemINVALID:                     "The transaction is ill-formed.",
	TemUNKNOWN:                     "Unknown transaction type.",
	TerRETRY:                       "Another transaction is being applied. Retry.",
	TerNO_ACCOUNT:                  "The source account does not exist.",
	TerPRE_SEQ:                     "Missing or out of order sequence number.",
}

// String returns the string representation of the result code
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(r))
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return r.String()
}

// ResultFromName parses a result code name such as "temBAD_AMOUNT".
func ResultFromName(name string) (Result, bool) {
	for r, n := range resultNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// ShouldRetry returns true if the transaction should be resubmitted later
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// IsApplied returns true if the transaction changed the ledger. Only
// tesSUCCESS does: every rejection leaves state untouched.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Kind classifies a result.
type Kind int

const (
	KindSuccess Kind = iota
	KindValidation
	KindStateConflict
	KindUnauthorized
	KindMalformed
	KindRetry
	KindFailure
)

var (
	ErrValidation    = errors.New("validation error")
	ErrStateConflict = errors.New("state conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMalformed     = errors.New("malformed transaction")
	ErrRetry         = errors.New("retry")
	ErrFailure       = errors.New("transaction failed")
)

// Kind returns the class a result belongs to.
func (r Result) Kind() Kind {
	switch r {
	case TesSUCCESS:
		return KindSuccess
	case TecEXPIRY_IN_PAST, TecPRICE_IRRELEVANT, TecOPTION_NOT_MARKED:
		return KindValidation
	case TecOPTION_ALREADY_BOUGHT, TecOPTION_ALREADY_EXERCISED, TecOPTION_NOT_PURCHASED,
		TecOPTION_EXPIRED, TecOPTION_NOT_EXPIRED, TecOPTION_CANNOT_BE_CLOSED_YET:
		return KindStateConflict
	case TecNO_PERMISSION, TefBAD_SIGNATURE:
		return KindUnauthorized
	}
	switch {
	case r.IsTem():
		return KindMalformed
	case r.IsTer():
		return KindRetry
	default:
		return KindFailure
	}
}

// ResultError is the error form of a non-success result.
type ResultError struct {
	Result Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Result, e.Result.Message())
}

// Is matches the sentinel of the result's kind.
func (e *ResultError) Is(target error) bool {
	switch e.Result.Kind() {
	case KindValidation:
		return target == ErrValidation
	case KindStateConflict:
		return target == ErrStateConflict
	case KindUnauthorized:
		return target == ErrUnauthorized
	case KindMalformed:
		return target == ErrMalformed
	case KindRetry:
		return target == ErrRetry
	default:
		return target == ErrFailure
	}
}

// Err returns nil for tesSUCCESS and a *ResultError otherwise.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &ResultError{Result: r}
}
