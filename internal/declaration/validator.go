package declaration

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

// Options tunes the validation limits.
type Options struct {
	// Max80D is the ceiling accepted for section 80D. Zero selects DefaultMax80D.
	Max80D float64
	// DefaultEPF is assumed when a CTC declaration omits EPF. Zero selects DefaultEPF.
	DefaultEPF float64
}

// Validator checks payloads and converts them into engine input.
type Validator struct {
	validate   *validator.Validate
	max80D     float64
	defaultEPF float64
}

type form struct {
	SalaryType       SalaryType `json:"salaryType" validate:"oneof=GROSS CTC"`
	CTC              float64    `json:"ctc" validate:"finite"`
	EPF              float64    `json:"epf" validate:"finite,gte=0"`
	GrossIncome      float64    `json:"grossIncome" validate:"finite,gt=0"`
	HRAReceived      float64    `json:"hraReceived" validate:"finite,gte=0"`
	RentPaid         float64    `json:"rentPaid" validate:"finite,gte=0"`
	Deduction80C     float64    `json:"deduction80C" validate:"finite,gte=0,max=150000"`
	Deduction80CCD1B float64    `json:"deduction80CCD1B" validate:"finite,gte=0,max=50000"`
	Deduction80D     float64    `json:"deduction80D" validate:"finite,gte=0"`
	HomeLoanInterest float64    `json:"homeLoanInterest" validate:"finite,gte=0"`
	OtherDeductions  float64    `json:"otherDeductions" validate:"finite,gte=0"`
}

var labels = map[string]string{
	"salaryType":       "Salary type",
	"ctc":              "CTC",
	"epf":              "EPF",
	"grossIncome":      "Gross income",
	"hraReceived":      "HRA received",
	"rentPaid":         "Rent paid",
	"deduction80C":     "Deduction under 80C",
	"deduction80CCD1B": "Deduction under 80CCD(1B)",
	"deduction80D":     "Deduction under 80D",
	"homeLoanInterest": "Home loan interest",
	"otherDeductions":  "Other deductions",
}

// NewValidator builds a Validator with the provided limits.
func NewValidator(opts Options) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return isFinite(fl.Field().Float())
	})

	max80D := opts.Max80D
	if max80D <= 0 {
		max80D = DefaultMax80D
	}
	defaultEPF := opts.DefaultEPF
	if defaultEPF <= 0 {
		defaultEPF = DefaultEPF
	}
	out := &Validator{validate: v, max80D: max80D, defaultEPF: defaultEPF}
	v.RegisterStructValidation(out.crossFieldRules, form{})
	return out
}

// Max80D returns the configured section 80D ceiling.
func (v *Validator) Max80D() float64 { return v.max80D }

// DefaultEPF returns the EPF assumed for CTC declarations.
func (v *Validator) DefaultEPF() float64 { return v.defaultEPF }

// Validate rejects invalid payloads and returns the engine input otherwise.
// A CTC declaration replaces grossIncome with ctc minus epf.
func (v *Validator) Validate(p Payload) (taxcalc.Input, error) {
	f := form{
		SalaryType:       normalizeSalaryType(p.SalaryType),
		GrossIncome:      p.GrossIncome,
		HRAReceived:      p.HRAReceived,
		RentPaid:         p.RentPaid,
		Deduction80C:     p.Deduction80C,
		Deduction80CCD1B: p.Deduction80CCD1B,
		Deduction80D:     p.Deduction80D,
		HomeLoanInterest: p.HomeLoanInterest,
		OtherDeductions:  p.OtherDeductions,
	}
	if f.SalaryType == SalaryCTC {
		if p.CTC != nil {
			f.CTC = *p.CTC
		}
		f.EPF = v.defaultEPF
		if p.EPF != nil {
			f.EPF = *p.EPF
		}
		f.GrossIncome = GrossFromCTC(f.CTC, f.EPF)
	}

	if err := v.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return taxcalc.Input{}, err
		}
		return taxcalc.Input{}, v.toValidationError(verrs)
	}

	return taxcalc.Input{
		GrossIncome:      f.GrossIncome,
		HRAReceived:      f.HRAReceived,
		RentPaid:         f.RentPaid,
		Deduction80C:     f.Deduction80C,
		Deduction80CCD1B: f.Deduction80CCD1B,
		Deduction80D:     f.Deduction80D,
		HomeLoanInterest: f.HomeLoanInterest,
		OtherDeductions:  f.OtherDeductions,
	}, nil
}

func (v *Validator) crossFieldRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(form)
	if isFinite(f.Deduction80D) && f.Deduction80D > v.max80D {
		sl.ReportError(f.Deduction80D, "deduction80D", "Deduction80D", "cap80d", "")
	}
	if isFinite(f.HRAReceived) && isFinite(f.GrossIncome) && f.HRAReceived > f.GrossIncome {
		sl.ReportError(f.HRAReceived, "hraReceived", "HRAReceived", "ltegross", "")
	}
	if f.SalaryType != SalaryCTC {
		return
	}
	if isFinite(f.EPF) && isFinite(f.CTC) && f.EPF > f.CTC {
		sl.ReportError(f.EPF, "epf", "EPF", "ltectc", "")
	}
	if isFinite(f.CTC) && f.CTC <= 0 {
		sl.ReportError(f.CTC, "ctc", "CTC", "ctcpositive", "")
	}
}

func (v *Validator) toValidationError(verrs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: v.message(fe)})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	p := message.NewPrinter(language.English)
	switch fe.Tag() {
	case "finite":
		return label + " must be a finite number"
	case "gt":
		return label + " must be greater than 0"
	case "gte":
		return label + " cannot be negative"
	case "max":
		limit, err := strconv.ParseFloat(fe.Param(), 64)
		if err != nil {
			return label + " exceeds its limit"
		}
		return p.Sprintf("%s cannot exceed ₹%d", label, int64(limit))
	case "oneof":
		return label + " must be one of GROSS or CTC"
	case "cap80d":
		return p.Sprintf("%s cannot exceed ₹%d", label, int64(v.max80D))
	case "ltegross":
		return "HRA received cannot be more than gross income"
	case "ltectc":
		return "EPF cannot be more than CTC"
	case "ctcpositive":
		return "CTC must be greater than 0"
	default:
		return label + " is invalid"
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
