package declaration

import (
	"errors"
	"strings"
)

// SalaryType tells how the salary figure was declared.
type SalaryType string

const (
	// SalaryGross means grossIncome is supplied directly.
	SalaryGross SalaryType = "GROSS"
	// SalaryCTC means grossIncome is derived from cost to company minus EPF.
	SalaryCTC SalaryType = "CTC"
)

// Defaults used when a field is omitted.
const (
	DefaultEPF    = 21_600
	DefaultMax80D = 75_000
)

// ErrInvalidDeclaration is wrapped by every validation failure.
var ErrInvalidDeclaration = errors.New("invalid tax declaration")

// Payload is the declaration as submitted by a client.
type Payload struct {
	SalaryType       SalaryType `json:"salaryType,omitempty"`
	CTC              *float64   `json:"ctc,omitempty"`
	EPF              *float64   `json:"epf,omitempty"`
	GrossIncome      float64    `json:"grossIncome"`
	HRAReceived      float64    `json:"hraReceived"`
	RentPaid         float64    `json:"rentPaid"`
	Deduction80C     float64    `json:"deduction80C"`
	Deduction80CCD1B float64    `json:"deduction80CCD1B"`
	Deduction80D     float64    `json:"deduction80D"`
	HomeLoanInterest float64    `json:"homeLoanInterest"`
	OtherDeductions  float64    `json:"otherDeductions"`
}

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field failures for one payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalidDeclaration.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidDeclaration.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets callers match ErrInvalidDeclaration with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDeclaration
}

// GrossFromCTC derives gross income from cost to company.
func GrossFromCTC(ctc, epf float64) float64 {
	return ctc - epf
}

func normalizeSalaryType(value SalaryType) SalaryType {
	trimmed := SalaryType(strings.ToUpper(strings.TrimSpace(string(value))))
	if trimmed == "" {
		return SalaryGross
	}
	return trimmed
}
