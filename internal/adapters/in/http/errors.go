package http

import (
	"errors"
	"log/slog"
	"net/http"

	"foodtrack/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// kindUnauthorized is sent when the bearer token is missing or invalid. It is a transport
// concern, so it is not part of the domain taxonomy.
const kindUnauthorized = "unauthorized"

var ErrUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid bearer token")

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindForbidden, errs.KindUnauthorizedPublisher:
		return http.StatusForbidden
	case errs.KindInvalidTransition, errs.KindPreconditionFailed:
		return http.StatusConflict
	case errs.KindEmptyCart, errs.KindCouponNotFound, errs.KindCouponNotApplicable:
		return http.StatusUnprocessableEntity
	case errs.KindNoCourierAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler renders every error as {code, kind, message}. Internal errors are logged
// and replaced by a generic message.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "http")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := errorResponse(err)
		req := c.Request()

		switch {
		case errs.IsSecurityRelevant(err):
			logger.Warn("authorization denied",
				"actor", actorString(c),
				"method", req.Method,
				"path", req.URL.Path,
				"error", err)
		case resp.Code == http.StatusUnauthorized:
			logger.Warn("authentication failed",
				"method", req.Method,
				"path", req.URL.Path,
				"remote", c.RealIP())
		case resp.Code >= http.StatusInternalServerError:
			logger.Error("request failed",
				"actor", actorString(c),
				"method", req.Method,
				"path", req.URL.Path,
				"error", err)
		}

		var writeErr error
		if req.Method == http.MethodHead {
			writeErr = c.NoContent(resp.Code)
		} else {
			writeErr = c.JSON(resp.Code, resp)
		}
		if writeErr != nil {
			logger.Error("failed to write error response", "error", writeErr)
		}
	}
}

func errorResponse(err error) ErrorResponse {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return httpErrorResponse(he)
	}

	kind := errs.KindOf(err)
	code := statusOf(kind)
	if kind == errs.KindInternal {
		return ErrorResponse{Code: code, Kind: string(kind), Message: "internal error"}
	}
	return ErrorResponse{Code: code, Kind: string(kind), Message: err.Error()}
}

func httpErrorResponse(he *echo.HTTPError) ErrorResponse {
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	var kind string
	switch {
	case he.Code == http.StatusUnauthorized:
		kind = kindUnauthorized
	case he.Code == http.StatusNotFound:
		kind = string(errs.KindNotFound)
	case he.Code == http.StatusForbidden:
		kind = string(errs.KindForbidden)
	case he.Code < http.StatusInternalServerError:
		kind = string(errs.KindValidation)
	default:
		kind = string(errs.KindInternal)
		message = "internal error"
	}
	return ErrorResponse{Code: he.Code, Kind: kind, Message: message}
}
