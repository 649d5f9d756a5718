package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContractTerms is the structured body of a lease. It is only ever built
// through NewContractTerms so a stored contract always carries valid terms.
type ContractTerms struct {
	MonthlyPrice      decimal.Decimal `json:"monthly_price"`
	Deposit           decimal.Decimal `json:"deposit"`
	Clauses           []string        `json:"clauses"`
	PaymentDay        int             `json:"payment_day"`
	LateFee           decimal.Decimal `json:"late_fee"`
	UtilitiesIncluded []string        `json:"utilities_included"`
	SpecialConditions string          `json:"special_conditions,omitempty"`
}

// TermsError lists every field that failed validation, keyed by field name.
type TermsError struct {
	Fields map[string]string
}

func (e *TermsError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "invalid contract terms: " + strings.Join(parts, "; ")
}

var ErrInvalidContractPeriod = errors.New("end_date must be after start_date")

func NewContractTerms(
	monthlyPrice decimal.Decimal,
	deposit decimal.Decimal,
	clauses []string,
	paymentDay int,
	lateFee decimal.Decimal,
	utilities []string,
	specialConditions string,
) (ContractTerms, error) {
	fields := map[string]string{}
	if monthlyPrice.IsNegative() {
		fields["monthly_price"] = "must be zero or greater"
	}
	if deposit.IsNegative() {
		fields["deposit"] = "must be zero or greater"
	}
	if lateFee.IsNegative() {
		fields["late_fee"] = "must be zero or greater"
	}
	if paymentDay < 1 || paymentDay > 31 {
		fields["payment_day"] = "must be between 1 and 31"
	}
	if len(clauses) == 0 {
		fields["clauses"] = "at least one clause is required"
	}
	cleanClauses := make([]string, 0, len(clauses))
	for i, c := range clauses {
		c = strings.TrimSpace(c)
		if c == "" {
			fields[fmt.Sprintf("clauses[%d]", i)] = "must not be empty"
			continue
		}
		cleanClauses = append(cleanClauses, c)
	}
	if len(fields) > 0 {
		return ContractTerms{}, &TermsError{Fields: fields}
	}

	if utilities == nil {
		utilities = []string{}
	}
	return ContractTerms{
		MonthlyPrice:      monthlyPrice,
		Deposit:           deposit,
		Clauses:           cleanClauses,
		PaymentDay:        paymentDay,
		LateFee:           lateFee,
		UtilitiesIncluded: utilities,
		SpecialConditions: strings.TrimSpace(specialConditions),
	}, nil
}

// ValidatePeriod checks the lease window.
func ValidatePeriod(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidContractPeriod
	}
	return nil
}

// MarshalTerms and UnmarshalTerms are the storage boundary for the JSONB
// terms column.
func MarshalTerms(t ContractTerms) ([]byte, error) {
	return json.Marshal(t)
}

func UnmarshalTerms(raw []byte) (ContractTerms, error) {
	var t ContractTerms
	if len(raw) == 0 {
		return t, nil
	}
	err := json.Unmarshal(raw, &t)
	return t, err
}
