package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// TaxMetrics groups collectors describing tax assessments.
type TaxMetrics struct {
	// Assessments counts completed assessments by recommended regime.
	Assessments *prometheus.CounterVec
	// ValidationFailures counts rejected declarations by offending field.
	ValidationFailures *prometheus.CounterVec
	// FinalTax records the final liability per regime in rupees.
	FinalTax *prometheus.HistogramVec
	// Reports counts text reports rendered.
	Reports prometheus.Counter
}

// NewTaxMetrics registers tax collectors on reg, reusing any that already exist.
func NewTaxMetrics(namespace string, reg prometheus.Registerer) *TaxMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &TaxMetrics{
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_assessments_total",
			Help:      "Count of completed tax assessments by recommended regime.",
		}, []string{"recommended"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_validation_failures_total",
			Help:      "Count of rejected declaration fields.",
		}, []string{"field"}),
		FinalTax: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tax_final_payable_rupees",
			Help:      "Distribution of final tax payable per regime.",
			Buckets:   []float64{0, 10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 2_500_000, 5_000_000},
		}, []string{"regime"}),
		Reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_reports_total",
			Help:      "Number of text reports rendered.",
		}),
	}
	mustRegisterCollector(reg, m.Assessments, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.Assessments = v
		}
	})
	mustRegisterCollector(reg, m.ValidationFailures, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.ValidationFailures = v
		}
	})
	mustRegisterCollector(reg, m.FinalTax, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.FinalTax = v
		}
	})
	mustRegisterCollector(reg, m.Reports, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.Reports = v
		}
	})
	return m
}

// ObserveAssessment records one completed assessment.
func (m *TaxMetrics) ObserveAssessment(recommended string, oldFinal, newFinal float64) {
	if m == nil {
		return
	}
	m.Assessments.WithLabelValues(recommended).Inc()
	m.FinalTax.WithLabelValues("old").Observe(oldFinal)
	m.FinalTax.WithLabelValues("new").Observe(newFinal)
}

// ObserveValidationFailure records each rejected field.
func (m *TaxMetrics) ObserveValidationFailure(fields ...string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.ValidationFailures.WithLabelValues(f).Inc()
	}
}

// ObserveReport records a rendered report.
func (m *TaxMetrics) ObserveReport() {
	if m == nil {
		return
	}
	m.Reports.Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
