package assessment

import (
	"encoding/json"
	"net/http"

	"github.com/noah-isme/backend-tax/internal/common"
	"github.com/noah-isme/backend-tax/internal/declaration"
	"github.com/noah-isme/backend-tax/internal/report"
	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

// Handler exposes the tax endpoints under /api/v1/tax.
type Handler struct {
	Svc *Service
}

type regimesResponse struct {
	Regimes        []taxcalc.Rules         `json:"regimes"`
	CessRate       float64                 `json:"cessRate"`
	SurchargeTiers []taxcalc.SurchargeTier `json:"surchargeTiers"`
	Limits         limits                  `json:"limits"`
}

type limits struct {
	Deduction80C     float64 `json:"deduction80C"`
	Deduction80CCD1B float64 `json:"deduction80CCD1B"`
	Deduction80D     float64 `json:"deduction80D"`
	DefaultEPF       float64 `json:"defaultEpf"`
}

// Calculate assesses a declaration and returns both regimes with a
// recommendation. ?trace=true adds the evaluation steps.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.Assess(r.Context(), payload, common.QueryBool(r, "trace"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// Report assesses a declaration and returns the plain-text report as a download.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	res, err := h.Svc.Assess(r.Context(), payload, false)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.Svc.Metrics.ObserveReport()
	common.Attachment(w, report.Filename, report.Text(res.Breakdown))
}

// Regimes publishes the rule tables the engine applies.
func (h *Handler) Regimes(w http.ResponseWriter, _ *http.Request) {
	resp := regimesResponse{
		CessRate:       taxcalc.CessRate,
		SurchargeTiers: taxcalc.SurchargeTiers(),
		Limits: limits{
			Deduction80C:     taxcalc.Cap80C,
			Deduction80CCD1B: taxcalc.Cap80CCD1B,
			Deduction80D:     declaration.DefaultMax80D,
			DefaultEPF:       declaration.DefaultEPF,
		},
	}
	if h.Svc != nil && h.Svc.Validator != nil {
		resp.Limits.Deduction80D = h.Svc.Validator.Max80D()
		resp.Limits.DefaultEPF = h.Svc.Validator.DefaultEPF()
	}
	for _, regime := range taxcalc.Regimes() {
		resp.Regimes = append(resp.Regimes, regime.Rules())
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": resp})
}

func decodePayload(w http.ResponseWriter, r *http.Request) (declaration.Payload, bool) {
	var payload declaration.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return payload, false
	}
	return payload, true
}
