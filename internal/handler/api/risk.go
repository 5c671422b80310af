// Package api exposes the scoring pipeline over HTTP.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/services/classifier"
	"RiskDesk/internal/services/features"
	"RiskDesk/internal/services/ratelimit"
	"RiskDesk/internal/usecase"
	"RiskDesk/pkg/cache"
	pkghttp "RiskDesk/pkg/http"
	"RiskDesk/pkg/logger"
)

// RiskHandler serves the /risk endpoints.
type RiskHandler struct {
	scoring     *usecase.Scoring
	cache       cache.Service
	limiter     *ratelimit.Limiter
	decisionTTL time.Duration
	log         *logger.Logger
}

// NewRiskHandler wires the risk API. cache and limiter may be nil when the
// corresponding features are disabled.
func NewRiskHandler(scoring *usecase.Scoring, cacheSvc cache.Service, limiter *ratelimit.Limiter, decisionTTL time.Duration, log *logger.Logger) *RiskHandler {
	if decisionTTL <= 0 {
		decisionTTL = 5 * time.Minute
	}
	return &RiskHandler{
		scoring:     scoring,
		cache:       cacheSvc,
		limiter:     limiter,
		decisionTTL: decisionTTL,
		log:         log,
	}
}

// RegisterRoutes mounts the risk API on the echo instance.
func (h *RiskHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/risk")
	if h.limiter != nil {
		g.Use(h.limiter.Middleware())
	}
	g.POST("/score", h.Score)
	g.POST("/underwrite", h.Underwrite)
	g.POST("/schedule", h.Schedule)
	g.GET("/scorecard", h.Scorecard)

	e.GET("/healthz", h.Health)
}

// Score prices a caller-supplied feature vector.
func (h *RiskHandler) Score(c echo.Context) error {
	var req models.ScoreRequest
	if errs := pkghttp.ReadAndValidateRequest(c, &req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	resp, err := h.scoring.Score(c.Request().Context(), &req)
	if err != nil {
		return h.fail(c, "score", err)
	}
	return pkghttp.SuccessResponse(c, resp)
}

// Underwrite builds the subject's features from the upstream providers and
// scores them. Responses are cached briefly so a client retrying the same
// request does not re-run the upstream fan-out.
func (h *RiskHandler) Underwrite(c echo.Context) error {
	var req models.UnderwriteRequest
	if errs := pkghttp.ReadAndValidateRequest(c, &req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	ctx := c.Request().Context()
	key, cacheable := underwriteKey(&req)

	if cacheable && h.cache != nil {
		var cached models.UnderwriteResponse
		if err := h.cache.Get(ctx, key, &cached); err == nil {
			return pkghttp.SuccessResponse(c, &cached)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.log.Warn("decision cache read failed", logger.Error(err))
		}
	}

	resp, err := h.scoring.Underwrite(ctx, &req)
	if err != nil {
		return h.fail(c, "underwrite", err)
	}

	if cacheable && h.cache != nil {
		if err := h.cache.Set(ctx, key, resp, h.decisionTTL); err != nil {
			h.log.Warn("decision cache write failed", logger.Error(err))
		}
	}
	return pkghttp.SuccessResponse(c, resp)
}

// Schedule computes a PRICE amortization schedule.
func (h *RiskHandler) Schedule(c echo.Context) error {
	var req models.ScheduleRequest
	if errs := pkghttp.ReadAndValidateRequest(c, &req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	resp, err := h.scoring.Schedule(&req)
	if err != nil {
		return pkghttp.AppErrorResponse(c, pkghttp.BadRequestError(err.Error()))
	}
	return pkghttp.SuccessResponse(c, resp)
}

// Scorecard reports the loaded scorecard, pricing and eligibility settings.
func (h *RiskHandler) Scorecard(c echo.Context) error {
	info, err := h.scoring.Info()
	if err != nil {
		return h.fail(c, "scorecard", err)
	}
	return pkghttp.SuccessResponse(c, info)
}

// Health is the liveness probe.
func (h *RiskHandler) Health(c echo.Context) error {
	return pkghttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *RiskHandler) fail(c echo.Context, op string, err error) error {
	appErr := classifyError(err)
	if appErr.Status >= 500 {
		h.log.Error(op+" failed", logger.Error(err))
	} else {
		h.log.Warn(op+" rejected", logger.Error(err))
	}
	return pkghttp.AppErrorResponse(c, appErr)
}

// classifyError maps pipeline errors onto HTTP statuses: data problems are
// 422, upstream failures 502, a missing model artifact 500.
func classifyError(err error) *pkghttp.AppError {
	var be *features.BuildError
	if errors.As(err, &be) {
		switch be.Kind {
		case features.KindMissingField:
			return pkghttp.UnprocessableError("ERR_MISSING_FIELD", be.Error())
		case features.KindMalformedDate:
			return pkghttp.UnprocessableError("ERR_MALFORMED_DATE", be.Error())
		case features.KindEmptyUpstream:
			return pkghttp.UnprocessableError("ERR_EMPTY_UPSTREAM", be.Error())
		case features.KindTransport:
			return pkghttp.BadGatewayError(be.Error())
		}
	}
	if errors.Is(err, classifier.ErrArtifactMissing) {
		return pkghttp.InternalError(err.Error())
	}
	return pkghttp.InternalError("scoring failed").WithError(err)
}

// underwriteKey derives a cache key from the full request payload so any
// change in overrides or fees produces a distinct entry.
func underwriteKey(req *models.UnderwriteRequest) (string, bool) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(b)
	return "underwrite:" + hex.EncodeToString(sum[:]), true
}
