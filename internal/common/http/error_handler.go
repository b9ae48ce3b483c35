package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/messagely/backend/internal/common/errors"
	"github.com/messagely/backend/internal/common/httpmetrics"
	"github.com/messagely/backend/internal/common/logger"
	"github.com/messagely/backend/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr, traceID)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeUnknown, "internal server error", traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError, traceID string) {
	ctx := r.Context()
	status := err.HTTPStatus()

	if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, logger.Fields{
			"error_code": err.Code(),
			"category":   string(err.Category()),
			"status":     status,
			"action":     "domain_error",
		}).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, status, err.Code(), err.Message(), traceID)
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	NewErrorHandler(log).HandleError(w, r, err)
}
