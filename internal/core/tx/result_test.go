package tx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultKinds(t *testing.T) {
	tests := []struct {
		result Result
		kind   Kind
		target error
	}{
		{TecEXPIRY_IN_PAST, KindValidation, ErrValidation},
		{TecPRICE_IRRELEVANT, KindValidation, ErrValidation},
		{TecOPTION_NOT_MARKED, KindValidation, ErrValidation},
		{TecOPTION_ALREADY_BOUGHT, KindStateConflict, ErrStateConflict},
		{TecOPTION_ALREADY_EXERCISED, KindStateConflict, ErrStateConflict},
		{TecOPTION_NOT_PURCHASED, KindStateConflict, ErrStateConflict},
		{TecOPTION_EXPIRED, KindStateConflict, ErrStateConflict},
		{TecOPTION_NOT_EXPIRED, KindStateConflict, ErrStateConflict},
		{TecOPTION_CANNOT_BE_CLOSED_YET, KindStateConflict, ErrStateConflict},
		{TecNO_PERMISSION, KindUnauthorized, ErrUnauthorized},
		{TefBAD_SIGNATURE, KindUnauthorized, ErrUnauthorized},
		{TemBAD_AMOUNT, KindMalformed, ErrMalformed},
		{TerRETRY, KindRetry, ErrRetry},
		{TecUNFUNDED, KindFailure, ErrFailure},
	}

	for _, tt := range tests {
		t.Run(tt.result.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.result.Kind())
			err := tt.result.Err()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.Contains(t, err.Error(), tt.result.String())
		})
	}

	assert.NoError(t, TesSUCCESS.Err())
	assert.False(t, errors.Is(TecOPTION_EXPIRED.Err(), ErrValidation))
}

func TestResultClassification(t *testing.T) {
	assert.True(t, TecUNFUNDED.IsTec())
	assert.False(t, TecUNFUNDED.IsApplied(), "rejections never change the ledger")
	assert.True(t, TesSUCCESS.IsApplied())
	assert.True(t, TerRETRY.ShouldRetry())
	assert.True(t, TefPAST_SEQ.IsTef())
	assert.True(t, TemMALFORMED.IsTem())
	assert.Equal(t, "Unknown(12345)", Result(12345).String())
}

func TestParseValidationError(t *testing.T) {
	assert.Equal(t, TemBAD_AMOUNT, ParseValidationError(errors.New("temBAD_AMOUNT: amount must be positive")))
	assert.Equal(t, TemMALFORMED, ParseValidationError(errors.New("temMALFORMED")))
	assert.Equal(t, TemINVALID, ParseValidationError(errors.New("something else")))
	// only tem codes may come out of preflight
	assert.Equal(t, TemINVALID, ParseValidationError(errors.New("tecUNFUNDED: nope")))
}

func TestResultFromName(t *testing.T) {
	r, ok := ResultFromName("tecOPTION_NOT_MARKED")
	require.True(t, ok)
	assert.Equal(t, TecOPTION_NOT_MARKED, r)

	_, ok = ResultFromName("tecNOPE")
	assert.False(t, ok)
}
