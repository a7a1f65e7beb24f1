package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/domains/access/be/service"
	accessapi "github.com/threadline-io/production-portal/generated/go/access"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/respond"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

// Handler wires the access service to the generated member access contract.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

var _ accessapi.StrictServerInterface = (*Handler)(nil)

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("access service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the member access contract routes on r.
func (h *Handler) Register(r chi.Router) {
	_ = accessapi.HandlerWithOptions(
		accessapi.NewStrictHandlerWithOptions(h, nil, accessapi.StrictHTTPServerOptions{
			RequestErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				h.loggerFrom(r.Context()).Warn("undecodable request body", zap.Error(err))
				respond.Error(w, http.StatusBadRequest, "invalid request body")
			},
			ResponseErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				h.loggerFrom(r.Context()).Error("write response", zap.Error(err))
				respond.Error(w, http.StatusInternalServerError, "failed to remove user access")
			},
		}),
		accessapi.ChiServerOptions{BaseRouter: r},
	)
}

// RemoveUserAccess implements POST /remove-user-access
func (h *Handler) RemoveUserAccess(ctx context.Context, request accessapi.RemoveUserAccessRequestObject) (accessapi.RemoveUserAccessResponseObject, error) {
	caller, ok := tenant.FromContext(ctx)
	if !ok {
		return accessapi.RemoveUserAccessdefaultJSONResponse{
			Body:       accessapi.Error{Error: "authentication required"},
			StatusCode: http.StatusUnauthorized,
		}, nil
	}

	var target string
	if request.Body != nil && request.Body.UserId != nil {
		target = *request.Body.UserId
	}

	if err := h.svc.RemoveUserAccess(ctx, caller, target); err != nil {
		status, message := classifyError(err)
		logger := h.loggerFrom(ctx).With(zap.String("operation", "remove_user_access"), zap.Int("status", status))
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("remove user access failed", zap.Error(err))
		case status == http.StatusNotFound:
			logger.Info("remove user access target not found", zap.Error(err))
		default:
			logger.Warn("remove user access rejected", zap.Error(err))
		}
		return accessapi.RemoveUserAccessdefaultJSONResponse{Body: accessapi.Error{Error: message}, StatusCode: status}, nil
	}

	return accessapi.RemoveUserAccess200JSONResponse{Success: true}, nil
}

func classifyError(err error) (int, string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, service.ErrSelfRemoval):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrOtherFactory),
		errors.Is(err, service.ErrOutranked):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "failed to remove user access"
	}
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok && logger != nil {
		return logger
	}
	return h.logger
}
