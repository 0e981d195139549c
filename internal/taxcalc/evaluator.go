package taxcalc

// Input is a validated declaration of annual income and deductions.
type Input struct {
	GrossIncome      float64 `json:"grossIncome"`
	HRAReceived      float64 `json:"hraReceived"`
	RentPaid         float64 `json:"rentPaid"`
	Deduction80C     float64 `json:"deduction80C"`
	Deduction80CCD1B float64 `json:"deduction80CCD1B"`
	Deduction80D     float64 `json:"deduction80D"`
	HomeLoanInterest float64 `json:"homeLoanInterest"`
	OtherDeductions  float64 `json:"otherDeductions"`
}

// Output is the full computation for a single regime.
type Output struct {
	NetTaxableIncome          float64 `json:"netTaxableIncome"`
	TaxPayable                float64 `json:"taxPayable"`
	Cess                      float64 `json:"cess"`
	Surcharge                 float64 `json:"surcharge"`
	Rebate                    float64 `json:"rebate"`
	FinalTaxPayable           float64 `json:"finalTaxPayable"`
	StandardDeduction         float64 `json:"standardDeduction"`
	HomeLoanInterestDeduction float64 `json:"homeLoanInterestDeduction"`
}

// Step names recorded in a Trace after the deduction steps.
const (
	StepGrossIncome      = "gross_income"
	StepNetTaxableIncome = "net_taxable_income"
	StepTaxPayable       = "tax_payable"
	StepCess             = "cess"
	StepSurcharge        = "surcharge"
	StepRebate           = "rebate"
	StepFinalTaxPayable  = "final_tax_payable"
)

// Step is one observed value during evaluation. Taxable is the running
// taxable income after the step.
type Step struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Taxable float64 `json:"taxable"`
}

// Trace is the ordered record of an evaluation. It never influences the result.
type Trace struct {
	Regime Regime `json:"regime"`
	Steps  []Step `json:"steps"`
}

// Evaluate computes one regime's output for in.
func Evaluate(in Input, regime Regime) Output {
	return evaluate(in, regime, nil)
}

// EvaluateWithTrace behaves like Evaluate and also returns every intermediate value.
func EvaluateWithTrace(in Input, regime Regime) (Output, Trace) {
	tr := &Trace{Regime: regime}
	out := evaluate(in, regime, tr)
	return out, *tr
}

func evaluate(in Input, regime Regime, tr *Trace) Output {
	rules := regime.Rules()
	record := func(name string, amount, taxable float64) {
		if tr != nil {
			tr.Steps = append(tr.Steps, Step{Name: name, Amount: amount, Taxable: taxable})
		}
	}

	taxable := in.GrossIncome
	record(StepGrossIncome, in.GrossIncome, taxable)
	for _, d := range rules.Deductions {
		amount := d.Amount(in, rules)
		taxable -= amount
		if d.Clamp {
			taxable = nonNegative(taxable)
		}
		record(string(d.Kind), amount, taxable)
	}
	taxable = nonNegative(taxable)
	record(StepNetTaxableIncome, taxable, taxable)

	tax := SlabTax(taxable, regime)
	record(StepTaxPayable, tax, taxable)
	cess := Cess(tax)
	record(StepCess, cess, taxable)
	surcharge := Surcharge(taxable, tax)
	record(StepSurcharge, surcharge, taxable)
	rebate := Rebate(taxable, regime, tax, cess)
	record(StepRebate, rebate, taxable)
	final := nonNegative(tax + cess + surcharge - rebate)
	record(StepFinalTaxPayable, final, taxable)

	out := Output{
		NetTaxableIncome:  taxable,
		TaxPayable:        tax,
		Cess:              cess,
		Surcharge:         surcharge,
		Rebate:            rebate,
		FinalTaxPayable:   final,
		StandardDeduction: rules.StandardDeduction,
	}
	for _, d := range rules.Deductions {
		if d.Kind == DeductionHomeLoanInterest {
			out.HomeLoanInterestDeduction = d.Amount(in, rules)
		}
	}
	return out
}

// Amount returns what this step subtracts from the running total.
func (d Deduction) Amount(in Input, rules Rules) float64 {
	var declared float64
	switch d.Kind {
	case DeductionStandard:
		return rules.StandardDeduction
	case DeductionHRA:
		return HRAExemption(in)
	case Deduction80C:
		declared = in.Deduction80C
	case Deduction80CCD1B:
		declared = in.Deduction80CCD1B
	case Deduction80D:
		declared = in.Deduction80D
	case DeductionHomeLoanInterest:
		declared = in.HomeLoanInterest
	case DeductionOther:
		declared = in.OtherDeductions
	}
	if d.Cap > 0 && declared > d.Cap {
		return d.Cap
	}
	return declared
}

// HRAExemption is the least of the allowance received, rent in excess of
// ten percent of gross income, and half of gross income. A non-positive
// operand contributes zero. RentPaid is multiplied by twelve even though
// it is declared as an annual figure.
func HRAExemption(in Input) float64 {
	var received, rentExcess, half float64
	if in.HRAReceived > 0 {
		received = in.HRAReceived
	}
	if in.RentPaid > 0 {
		rentExcess = in.RentPaid*12 - 0.1*in.GrossIncome
	}
	if in.GrossIncome > 0 {
		half = 0.5 * in.GrossIncome
	}
	return min(received, rentExcess, half)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
