package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractTransitions(t *testing.T) {
	assert.True(t, ContractPending.CanTransition(ContractActive))
	assert.True(t, ContractPending.CanTransition(ContractRejected))
	assert.True(t, ContractPending.CanTransition(ContractCancelled))
	assert.False(t, ContractPending.CanTransition(ContractExpired))

	assert.True(t, ContractActive.CanTransition(ContractCancelled))
	assert.True(t, ContractActive.CanTransition(ContractExpired))
	assert.False(t, ContractActive.CanTransition(ContractPending))

	for _, s := range []ContractStatus{ContractRejected, ContractCancelled, ContractExpired, ContractInactive} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestAcceptsPayments(t *testing.T) {
	assert.True(t, ContractActive.AcceptsPayments(false))
	assert.True(t, ContractActive.AcceptsPayments(true))
	assert.False(t, ContractPending.AcceptsPayments(false))
	assert.True(t, ContractPending.AcceptsPayments(true))
	assert.False(t, ContractCancelled.AcceptsPayments(true))
}

func TestNewContractTerms(t *testing.T) {
	terms, err := NewContractTerms(
		decimal.NewFromInt(1800000),
		decimal.NewFromInt(1800000),
		[]string{"  Sin mascotas  ", "Pago anticipado"},
		5,
		decimal.NewFromInt(50000),
		nil,
		"  Entrega con pintura nueva ",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sin mascotas", "Pago anticipado"}, terms.Clauses)
	assert.Equal(t, []string{}, terms.UtilitiesIncluded)
	assert.Equal(t, "Entrega con pintura nueva", terms.SpecialConditions)

	raw, err := MarshalTerms(terms)
	require.NoError(t, err)
	back, err := UnmarshalTerms(raw)
	require.NoError(t, err)
	assert.True(t, terms.MonthlyPrice.Equal(back.MonthlyPrice))
	assert.Equal(t, terms.Clauses, back.Clauses)

	empty, err := UnmarshalTerms(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Clauses)
}

func TestNewContractTermsCollectsEveryProblem(t *testing.T) {
	_, err := NewContractTerms(
		decimal.NewFromInt(-1),
		decimal.NewFromInt(-1),
		[]string{""},
		32,
		decimal.NewFromInt(-1),
		nil,
		"",
	)
	var te *TermsError
	require.True(t, errors.As(err, &te))
	assert.Len(t, te.Fields, 5)
	for _, f := range []string{"monthly_price", "deposit", "late_fee", "payment_day", "clauses[0]"} {
		assert.Contains(t, te.Fields, f)
	}

	_, err = NewContractTerms(decimal.Zero, decimal.Zero, nil, 1, decimal.Zero, nil, "")
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Fields, "clauses")
}

func TestValidatePeriod(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidatePeriod(start, start.AddDate(1, 0, 0)))
	assert.ErrorIs(t, ValidatePeriod(start, start), ErrInvalidContractPeriod)
	assert.ErrorIs(t, ValidatePeriod(start, start.AddDate(0, 0, -1)), ErrInvalidContractPeriod)
}
