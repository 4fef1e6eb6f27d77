package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "tariffscope/internal/errors"
	"tariffscope/internal/predict"
)

// PredictService scores a (country, sector) pair.
type PredictService interface {
	PredictAt(ctx context.Context, country, sector string, target time.Time) (*predict.Prediction, error)
}

// PredictRequest is the query contract for GET /api/predict.
type PredictRequest struct {
	Country string `validate:"required,min=2,max=64"`
	Sector  string `validate:"omitempty,max=64"`
	Month   string `validate:"omitempty,datetime=2006-01-02"`
}

// PredictHandler handles prediction HTTP requests.
type PredictHandler struct {
	service  PredictService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(service PredictService, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "predict")),
	}
}

// Predict handles GET /api/predict?country=...&sector=...
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := PredictRequest{
		Country: r.URL.Query().Get("country"),
		Sector:  r.URL.Query().Get("sector"),
		Month:   r.URL.Query().Get("month"),
	}
	if req.Sector == "" {
		req.Sector = "General"
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.WarnContext(ctx, "invalid predict request",
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED",
			"invalid request parameters", err.Error()))
		return
	}

	var target time.Time
	if req.Month != "" {
		// Validated above, cannot fail here.
		target, _ = time.Parse("2006-01-02", req.Month)
	}

	pred, err := h.service.PredictAt(ctx, req.Country, req.Sector, target)
	if err != nil {
		h.logger.ErrorContext(ctx, "prediction failed",
			slog.String("country", req.Country),
			slog.String("sector", req.Sector),
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.FromDomain(err))
		return
	}

	RecordPrediction(pred.Strategy)
	render.JSON(w, r, pred)
}
