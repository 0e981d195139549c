package assessment_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tax/internal/assessment"
	"github.com/noah-isme/backend-tax/internal/common"
	"github.com/noah-isme/backend-tax/internal/declaration"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

func newService(t *testing.T) (*assessment.Service, *obs.TaxMetrics) {
	t.Helper()
	metrics := obs.NewTaxMetrics("taxregime", prometheus.NewRegistry())
	svc := assessment.NewService(declaration.NewValidator(declaration.Options{}), metrics)
	svc.NewID = func() string { return "assessment-1" }
	return svc, metrics
}

func TestAssessRecommendsLowerRegime(t *testing.T) {
	svc, metrics := newService(t)

	res, err := svc.Assess(context.Background(), declaration.Payload{GrossIncome: 600_000}, false)
	require.NoError(t, err)
	require.Equal(t, "assessment-1", res.ID)
	require.InDelta(t, 23_400, res.Breakdown.Old.FinalTaxPayable, 1e-6)
	require.InDelta(t, 0, res.Breakdown.New.FinalTaxPayable, 1e-6)
	require.Equal(t, taxcalc.New, res.Comparison.Recommended)
	require.InDelta(t, 23_400, res.Comparison.Saving, 1e-6)
	require.Nil(t, res.Trace)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Assessments.WithLabelValues("new")))
}

func TestAssessMatchesBuild(t *testing.T) {
	svc, _ := newService(t)
	payload := declaration.Payload{
		GrossIncome:      1_800_000,
		HRAReceived:      240_000,
		RentPaid:         25_000,
		Deduction80C:     150_000,
		Deduction80D:     25_000,
		HomeLoanInterest: 180_000,
	}

	res, err := svc.Assess(context.Background(), payload, true)
	require.NoError(t, err)
	require.Equal(t, taxcalc.Build(res.Input), res.Breakdown)
	require.NotNil(t, res.Trace)
	require.Equal(t, taxcalc.Old, res.Trace.Old.Regime)
	require.Equal(t, taxcalc.New, res.Trace.New.Regime)
	last := res.Trace.Old.Steps[len(res.Trace.Old.Steps)-1]
	require.Equal(t, taxcalc.StepFinalTaxPayable, last.Name)
	require.InDelta(t, res.Breakdown.Old.FinalTaxPayable, last.Amount, 1e-6)
}

func TestAssessDerivesGrossFromCTC(t *testing.T) {
	svc, _ := newService(t)
	ctc := 1_021_600.0

	res, err := svc.Assess(context.Background(), declaration.Payload{SalaryType: declaration.SalaryCTC, CTC: &ctc}, false)
	require.NoError(t, err)
	require.InDelta(t, 1_000_000, res.Input.GrossIncome, 1e-6)
	require.InDelta(t, 0, res.Breakdown.New.FinalTaxPayable, 1e-6)
}

func TestAssessValidationFailure(t *testing.T) {
	svc, metrics := newService(t)

	_, err := svc.Assess(context.Background(), declaration.Payload{GrossIncome: 500_000, HRAReceived: 600_000}, false)
	require.Error(t, err)
	require.True(t, errors.Is(err, declaration.ErrInvalidDeclaration))

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, common.CodeValidationFailed, appErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	fields, ok := appErr.Details.([]declaration.FieldError)
	require.True(t, ok)
	require.Len(t, fields, 1)
	require.Equal(t, "hraReceived", fields[0].Field)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues("hraReceived")))
}

func TestAssessNotConfigured(t *testing.T) {
	var svc *assessment.Service
	_, err := svc.Assess(context.Background(), declaration.Payload{GrossIncome: 1}, false)
	require.Error(t, err)
	require.False(t, common.IsAppError(err))
}
