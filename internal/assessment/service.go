package assessment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-tax/internal/common"
	"github.com/noah-isme/backend-tax/internal/declaration"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/report"
	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

// Result is one assessment of a declaration under both regimes.
type Result struct {
	ID         string                  `json:"id"`
	Input      taxcalc.Input           `json:"input"`
	Breakdown  taxcalc.Breakdown       `json:"breakdown"`
	Comparison report.Comparison       `json:"comparison"`
	Trace      *taxcalc.BreakdownTrace `json:"trace,omitempty"`
}

// Service validates declarations and compares both regimes.
type Service struct {
	Validator *declaration.Validator
	Metrics   *obs.TaxMetrics
	// NewID overrides the assessment id generator in tests.
	NewID func() string
}

// NewService wires a Service with the given validator and metrics.
func NewService(v *declaration.Validator, metrics *obs.TaxMetrics) *Service {
	return &Service{Validator: v, Metrics: metrics}
}

// Assess validates the payload and evaluates both regimes. Validation
// failures are returned as a 422 AppError carrying the field list.
func (s *Service) Assess(ctx context.Context, p declaration.Payload, withTrace bool) (Result, error) {
	if s == nil || s.Validator == nil {
		return Result{}, errors.New("assessment service not configured")
	}
	ctx, span := otel.Tracer("assessment.Service").Start(ctx, "AssessmentService.Assess")
	defer span.End()

	start := time.Now()
	in, err := s.Validator.Validate(p)
	if err != nil {
		span.SetStatus(codes.Error, "invalid declaration")
		var verr *declaration.ValidationError
		if errors.As(err, &verr) {
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			s.Metrics.ObserveValidationFailure(fields...)
			return Result{}, common.NewAppError(common.CodeValidationFailed, "invalid tax declaration", http.StatusUnprocessableEntity, err).
				WithDetails(verr.Fields)
		}
		return Result{}, err
	}

	var (
		oldOut, newOut     taxcalc.Output
		oldTrace, newTrace taxcalc.Trace
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		oldOut, oldTrace = taxcalc.EvaluateWithTrace(in, taxcalc.Old)
		return nil
	})
	g.Go(func() error {
		newOut, newTrace = taxcalc.EvaluateWithTrace(in, taxcalc.New)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	breakdown := taxcalc.Breakdown{Old: oldOut, New: newOut}
	res := Result{
		ID:         s.newID(),
		Input:      in,
		Breakdown:  breakdown,
		Comparison: report.Compare(breakdown),
	}
	if withTrace {
		res.Trace = &taxcalc.BreakdownTrace{Old: oldTrace, New: newTrace}
	}

	recommended := res.Comparison.Recommended.String()
	s.Metrics.ObserveAssessment(recommended, oldOut.FinalTaxPayable, newOut.FinalTaxPayable)
	span.SetAttributes(
		attribute.String("tax.assessment.id", res.ID),
		attribute.String("tax.recommended_regime", recommended),
		attribute.Float64("tax.duration_ms", obs.DurationMillis(time.Since(start))),
	)
	zerolog.Ctx(ctx).Debug().
		Str("assessment_id", res.ID).
		Float64("old_final_tax", oldOut.FinalTaxPayable).
		Float64("new_final_tax", newOut.FinalTaxPayable).
		Str("recommended", recommended).
		Float64("saving", res.Comparison.Saving).
		Msg("tax assessed")
	return res, nil
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
