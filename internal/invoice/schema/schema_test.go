package schema

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSuccess(t *testing.T) {
	res := Validate(domain.FormInput{CustomerID: " c1 ", Amount: "42.50", Status: "pending"})
	require.True(t, res.OK())
	assert.Equal(t, "c1", res.Record.CustomerID)
	assert.True(t, res.Record.Amount.Equal(decimal.RequireFromString("42.5")))
	assert.Equal(t, domain.StatusPending, res.Record.Status)
}

func TestValidateAmount(t *testing.T) {
	for _, amount := range []string{"", "  ", "0", "-5", "abc", "12abc", "NaN", "Infinity", "0.00"} {
		t.Run(amount, func(t *testing.T) {
			res := Validate(domain.FormInput{CustomerID: "c1", Amount: amount, Status: "paid"})
			require.False(t, res.OK())
			assert.Equal(t, domain.FieldErrors{domain.FieldAmount: {MsgAmountPositive}}, res.Errors)
		})
	}
}

func TestValidateAmountTooLarge(t *testing.T) {
	res := Validate(domain.FormInput{CustomerID: "c1", Amount: "1e30", Status: "paid"})
	require.False(t, res.OK())
	assert.Equal(t, []string{MsgAmountTooLarge}, res.Errors[domain.FieldAmount])
}

func TestValidateAmountRejectsHugeExponentsQuickly(t *testing.T) {
	for _, amount := range []string{"1e20000000", "1e2000000000", "123456789012345678", "9e17", strings.Repeat("9", 65)} {
		t.Run(amount[:min(len(amount), 20)], func(t *testing.T) {
			start := time.Now()
			res := Validate(domain.FormInput{CustomerID: "c1", Amount: amount, Status: "paid"})
			assert.Less(t, time.Since(start), 100*time.Millisecond)
			require.False(t, res.OK())
			assert.Equal(t, []string{MsgAmountTooLarge}, res.Errors[domain.FieldAmount])
		})
	}
}

func TestValidateAmountRejectsSubCentValues(t *testing.T) {
	for _, amount := range []string{"0.001", "0.0049", "1e-500000", "4e-3"} {
		t.Run(amount, func(t *testing.T) {
			start := time.Now()
			res := Validate(domain.FormInput{CustomerID: "c1", Amount: amount, Status: "paid"})
			assert.Less(t, time.Since(start), 100*time.Millisecond)
			require.False(t, res.OK())
			assert.Equal(t, []string{MsgAmountPositive}, res.Errors[domain.FieldAmount])
		})
	}
}

func TestValidateAmountAcceptsValuesRoundingToOneCent(t *testing.T) {
	for _, amount := range []string{"0.005", "0.01", "5e-3", "92233720368547758.07"} {
		res := Validate(domain.FormInput{CustomerID: "c1", Amount: amount, Status: "paid"})
		assert.True(t, res.OK(), amount)
	}
}

func TestValidateStatusIsExact(t *testing.T) {
	for _, status := range []string{"", "PAID", "Pending", " paid", "overdue"} {
		res := Validate(domain.FormInput{CustomerID: "c1", Amount: "1", Status: status})
		require.False(t, res.OK(), status)
		assert.Equal(t, []string{MsgSelectStatus}, res.Errors[domain.FieldStatus], status)
	}
}

func TestValidateReportsAllFields(t *testing.T) {
	res := Validate(domain.FormInput{})
	require.False(t, res.OK())
	assert.Equal(t, domain.FieldErrors{
		domain.FieldCustomerID: {MsgSelectCustomer},
		domain.FieldAmount:     {MsgAmountPositive},
		domain.FieldStatus:     {MsgSelectStatus},
	}, res.Errors)
	assert.Equal(t, Record{}, res.Record)
}
