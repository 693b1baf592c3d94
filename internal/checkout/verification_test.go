package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validVerification() PaymentVerification {
	return PaymentVerification{
		Bank:           "banesco",
		Reference:      "123456",
		DocumentNumber: "1234567",
		Phone:          "04141234567",
	}
}

func TestPaymentVerificationValid(t *testing.T) {
	assert.True(t, validVerification().Valid())
}

func TestPaymentVerificationFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PaymentVerification)
	}{
		{"missing bank", func(v *PaymentVerification) { v.Bank = "" }},
		{"short reference", func(v *PaymentVerification) { v.Reference = "123" }},
		{"non-numeric reference", func(v *PaymentVerification) { v.Reference = "12a4" }},
		{"all-zero reference", func(v *PaymentVerification) { v.Reference = "0000" }},
		{"short document", func(v *PaymentVerification) { v.DocumentNumber = "123456" }},
		{"long document", func(v *PaymentVerification) { v.DocumentNumber = "123456789" }},
		{"all-zero document", func(v *PaymentVerification) { v.DocumentNumber = "0000000" }},
		{"leading-zero document", func(v *PaymentVerification) { v.DocumentNumber = "0123456" }},
		{"short phone", func(v *PaymentVerification) { v.Phone = "0414123456" }},
		{"all-zero phone", func(v *PaymentVerification) { v.Phone = "00000000000" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVerification()
			tt.mutate(&v)
			problems := v.Validate()
			assert.NotEmpty(t, problems)
			assert.False(t, v.Valid())
		})
	}
}

func TestPaymentVerificationReportsEveryProblem(t *testing.T) {
	problems := PaymentVerification{}.Validate()
	assert.Len(t, problems, 4)
}
