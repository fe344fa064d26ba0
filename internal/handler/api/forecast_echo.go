package api

import (
	"time"

	models "GridCast/internal/domain/models"
	svcmetrics "GridCast/internal/service/metrics"
	"GridCast/internal/usecase"
	xhttp "GridCast/pkg/http"
	xlogger "GridCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	models  *usecase.ModelUseCase
	savings *usecase.SavingsUseCase
	cached  *ForecastHandler
}

func NewForecastEchoHandler(logger *xlogger.Logger, m *usecase.ModelUseCase, s *usecase.SavingsUseCase) *ForecastEchoHandler {
	svcmetrics.Register()
	return &ForecastEchoHandler{logger: logger, models: m, savings: s}
}

// SetCachedHandler mounts the cached read-only handlers under /v1.
func (h *ForecastEchoHandler) SetCachedHandler(c *ForecastHandler) { h.cached = c }

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/model/train", h.Train)
	g.POST("/model/correct", h.Correct)
	g.POST("/model/evaluate", h.Evaluate)
	g.GET("/forecasts/improved", h.ImprovedForecasts)
	g.GET("/savings", h.Savings)
	g.GET("/accuracy", h.Accuracy)

	// cached, rate-limited read surface for dashboards
	if h.cached != nil {
		v1 := e.Group("/v1")
		v1.GET("/forecasts/improved", echo.WrapHandler(h.cached.ImprovedForecasts()))
		v1.GET("/savings", echo.WrapHandler(h.cached.Savings()))
		v1.GET("/accuracy", echo.WrapHandler(h.cached.Accuracy()))
	}
}

func (h *ForecastEchoHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end, err := parseWindow(req.Start, req.End)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}

	model, err := h.models.TrainModel(c.Request().Context(), req.Market, start, end)
	if err != nil {
		h.logger.Error("train usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErrorFor(err))
	}
	svcmetrics.ModelTrainings.WithLabelValues(req.Market).Inc()
	return xhttp.CreatedResponse(c, model)
}

func (h *ForecastEchoHandler) Correct(c echo.Context) error {
	req := &models.CorrectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("invalid timestamp"))
	}

	corrected, err := h.models.Correct(c.Request().Context(), req.Market, req.Version, req.Price, ts, req.Horizon)
	if err != nil {
		h.logger.Error("correct usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErrorFor(err))
	}
	return xhttp.SuccessResponse(c, map[string]float64{
		"original_price":  req.Price,
		"corrected_price": corrected,
	})
}

func (h *ForecastEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end, err := parseWindow(req.Start, req.End)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}

	report, err := h.models.Evaluate(c.Request().Context(), req.Market, req.Version, start, end)
	if err != nil {
		h.logger.Error("evaluate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErrorFor(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ForecastEchoHandler) ImprovedForecasts(c echo.Context) error {
	req := &models.ImprovedForecastsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end, err := parseWindow(req.Start, req.End)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}

	res, err := h.models.GetImprovedForecasts(c.Request().Context(), req.Market, req.Version, start, end)
	if err != nil {
		h.logger.Error("improved forecasts usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErrorFor(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Savings(c echo.Context) error {
	req := &models.SavingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end, err := parseWindow(req.Start, req.End)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}

	res, err := h.savings.CalculateSavings(c.Request().Context(), usecase.SavingsParams{
		SiteID: req.SiteID,
		Market: req.Market,
		Start:  start,
		End:    end,
	})
	if err != nil {
		h.logger.Error("savings usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErrorFor(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Accuracy(c echo.Context) error {
	req := &models.AccuracyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end, err := parseWindow(req.Start, req.End)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
	}

	res, err := h.savings.CalculateForecastAccuracy(c.Request().Context(), req.Market, start, end)
	if err != nil {
		h.logger.Error("accuracy usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErrorFor(err))
	}
	return xhttp.SuccessResponse(c, res)
}
