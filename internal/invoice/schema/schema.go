// Package schema validates raw invoice form input.
package schema

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
)

const (
	MsgSelectCustomer = "Please select a customer"
	MsgAmountPositive = "Please enter an amount greater than 0"
	MsgAmountTooLarge = "Please enter a smaller amount"
	MsgSelectStatus   = "Please select an invoice status"
)

// maxAmountLength bounds the raw amount text handed to the decimal parser.
const maxAmountLength = 64

// Record is a validated invoice form.
type Record struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     domain.Status
}

// Result holds either a Record or the field errors, never both.
type Result struct {
	Record Record
	Errors domain.FieldErrors
}

func (r Result) OK() bool {
	return r.Errors.Empty()
}

// Validate checks every field and reports all failures together.
func Validate(input domain.FormInput) Result {
	errs := domain.FieldErrors{}
	var rec Record

	rec.CustomerID = strings.TrimSpace(input.CustomerID)
	if rec.CustomerID == "" {
		errs.Add(domain.FieldCustomerID, MsgSelectCustomer)
	}

	amount, verdict := parseAmount(input.Amount)
	switch verdict {
	case amountOK:
		rec.Amount = amount
	case amountTooLarge:
		errs.Add(domain.FieldAmount, MsgAmountTooLarge)
	default:
		errs.Add(domain.FieldAmount, MsgAmountPositive)
	}

	status, ok := domain.ParseStatus(input.Status)
	if !ok {
		errs.Add(domain.FieldStatus, MsgSelectStatus)
	}
	rec.Status = status

	if !errs.Empty() {
		return Result{Errors: errs}
	}
	return Result{Record: rec}
}

type amountVerdict int

const (
	amountInvalid amountVerdict = iota
	amountTooLarge
	amountOK
)

// parseAmount accepts a decimal string worth at least one cent once rounded.
// Magnitude is judged from digit count and exponent before any arithmetic.
func parseAmount(raw string) (decimal.Decimal, amountVerdict) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, amountInvalid
	}
	if len(raw) > maxAmountLength {
		return decimal.Zero, amountTooLarge
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, amountInvalid
	}
	if !amount.IsPositive() {
		return decimal.Zero, amountInvalid
	}

	digits := format.IntegerDigits(amount)
	switch {
	case digits > format.MaxIntegerDigits:
		return decimal.Zero, amountTooLarge
	case digits <= -3:
		return decimal.Zero, amountInvalid
	case !format.FitsMinorUnits(amount):
		return decimal.Zero, amountTooLarge
	case format.ToMinorUnits(amount) == 0:
		return decimal.Zero, amountInvalid
	}
	return amount, amountOK
}
