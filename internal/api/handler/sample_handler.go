package handler

import (
	"net/http"

	"github.com/blaisecz/health-insights/internal/api/validation"
	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/service"
	"github.com/blaisecz/health-insights/pkg/problem"
	"github.com/goccy/go-json"
)

type SampleHandler struct {
	service service.SampleService
}

func NewSampleHandler(service service.SampleService) *SampleHandler {
	return &SampleHandler{service: service}
}

// Ingest handles POST /v1/samples
// @Summary Ingest raw health samples
// @Description Store a batch of raw samples. Samples with an external_id that is already stored are skipped.
// @Tags samples
// @Accept json
// @Produce json
// @Param request body domain.IngestSamplesRequest true "Sample batch"
// @Success 201 {object} domain.IngestSamplesResponse "Samples stored"
// @Success 200 {object} domain.IngestSamplesResponse "Every sample was already stored"
// @Failure 400 {object} problem.Problem
// @Failure 422 {object} problem.Problem
// @Failure 500 {object} problem.Problem
// @Router /samples [post]
func (h *SampleHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	resp, err := h.service.Ingest(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to ingest samples")
		return
	}

	status := http.StatusCreated
	if resp.Inserted == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}
