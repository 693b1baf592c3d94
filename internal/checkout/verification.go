package checkout

import "regexp"

// PaymentVerification carries the transfer or mobile-payment reference the
// customer submits so the store can match the incoming payment.
type PaymentVerification struct {
	Bank           string `json:"bank"`
	Reference      string `json:"reference"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone"`
}

var (
	referencePattern = regexp.MustCompile(`^\d{4,}$`)
	documentPattern  = regexp.MustCompile(`^\d{7,8}$`)
	phonePattern     = regexp.MustCompile(`^\d{11}$`)
	allZerosPattern  = regexp.MustCompile(`^0+$`)
)

// Validate checks every verification field and returns one message per
// invalid field. An empty slice means the data is acceptable.
func (v PaymentVerification) Validate() []string {
	var problems []string

	if v.Bank == "" {
		problems = append(problems, "bank is required")
	}

	switch {
	case !referencePattern.MatchString(v.Reference):
		problems = append(problems, "payment reference must be at least 4 digits")
	case allZerosPattern.MatchString(v.Reference):
		problems = append(problems, "payment reference cannot be all zeros")
	}

	switch {
	case !documentPattern.MatchString(v.DocumentNumber):
		problems = append(problems, "document number must be 7 or 8 digits")
	case allZerosPattern.MatchString(v.DocumentNumber):
		problems = append(problems, "document number cannot be all zeros")
	case v.DocumentNumber[0] == '0':
		problems = append(problems, "document number cannot start with zero")
	}

	switch {
	case !phonePattern.MatchString(v.Phone):
		problems = append(problems, "phone must be 11 digits")
	case allZerosPattern.MatchString(v.Phone):
		problems = append(problems, "phone cannot be all zeros")
	}

	return problems
}

// Valid reports whether the verification data passes all field rules.
func (v PaymentVerification) Valid() bool {
	return len(v.Validate()) == 0
}
