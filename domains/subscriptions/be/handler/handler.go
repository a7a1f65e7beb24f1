package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/domains/subscriptions/be/service"
	billingapi "github.com/threadline-io/production-portal/generated/go/billing"
	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/respond"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

const maxWebhookPayload = 64 << 10

type operation string

const (
	checkSubscriptionOperation  operation = "check_subscription"
	checkoutOperation           operation = "checkout"
	changeSubscriptionOperation operation = "change_subscription"
	customerPortalOperation     operation = "customer_portal"
	createFactoryOperation      operation = "create_factory"
	accessOperation             operation = "access"
)

var unauthenticated = billingapi.Error{Error: "authentication required"}

// Handler wires the subscriptions service to the generated billing contract.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

var _ billingapi.StrictServerInterface = (*Handler)(nil)

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("subscriptions service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the billing contract routes on r.
func (h *Handler) Register(r chi.Router) {
	_ = billingapi.HandlerWithOptions(
		billingapi.NewStrictHandlerWithOptions(h, nil, billingapi.StrictHTTPServerOptions{
			RequestErrorHandlerFunc:  h.requestError,
			ResponseErrorHandlerFunc: h.responseError,
		}),
		billingapi.ChiServerOptions{BaseRouter: r, ErrorHandlerFunc: h.parameterError},
	)
}

func (h *Handler) CheckSubscription(ctx context.Context, _ billingapi.CheckSubscriptionRequestObject) (billingapi.CheckSubscriptionResponseObject, error) {
	ent, status, body := h.checkSubscription(ctx)
	if body != nil {
		return billingapi.CheckSubscriptiondefaultJSONResponse{Body: *body, StatusCode: status}, nil
	}
	return billingapi.CheckSubscription200JSONResponse(ent), nil
}

func (h *Handler) CheckSubscriptionPost(ctx context.Context, _ billingapi.CheckSubscriptionPostRequestObject) (billingapi.CheckSubscriptionPostResponseObject, error) {
	ent, status, body := h.checkSubscription(ctx)
	if body != nil {
		return billingapi.CheckSubscriptionPostdefaultJSONResponse{Body: *body, StatusCode: status}, nil
	}
	return billingapi.CheckSubscriptionPost200JSONResponse(ent), nil
}

func (h *Handler) checkSubscription(ctx context.Context) (billingapi.Entitlement, int, *billingapi.Error) {
	caller, ok := callerFrom(ctx)
	if !ok {
		return billingapi.Entitlement{}, http.StatusUnauthorized, &unauthenticated
	}

	ent, err := h.svc.CheckSubscription(ctx, caller)
	if err != nil {
		status, body := h.errorFor(ctx, err, checkSubscriptionOperation)
		return billingapi.Entitlement{}, status, &body
	}
	return toAPIEntitlement(ent), 0, nil
}

func (h *Handler) CreateCheckout(ctx context.Context, request billingapi.CreateCheckoutRequestObject) (billingapi.CreateCheckoutResponseObject, error) {
	caller, ok := callerFrom(ctx)
	if !ok {
		return billingapi.CreateCheckoutdefaultJSONResponse{Body: unauthenticated, StatusCode: http.StatusUnauthorized}, nil
	}

	input := service.CheckoutInput{Origin: deref(request.Params.Origin)}
	if request.Body != nil {
		input.Tier = request.Body.Tier
		input.StartTrial = request.Body.StartTrial != nil && *request.Body.StartTrial
	}

	result, err := h.svc.Checkout(ctx, caller, input)
	if err != nil {
		status, body := h.errorFor(ctx, err, checkoutOperation)
		return billingapi.CreateCheckoutdefaultJSONResponse{Body: body, StatusCode: status}, nil
	}
	return billingapi.CreateCheckout200JSONResponse(toAPICheckoutResult(result)), nil
}

func (h *Handler) ChangeSubscription(ctx context.Context, request billingapi.ChangeSubscriptionRequestObject) (billingapi.ChangeSubscriptionResponseObject, error) {
	caller, ok := callerFrom(ctx)
	if !ok {
		return billingapi.ChangeSubscriptiondefaultJSONResponse{Body: unauthenticated, StatusCode: http.StatusUnauthorized}, nil
	}

	var newTier string
	if request.Body != nil {
		newTier = request.Body.NewTier
	}

	change, err := h.svc.ChangeSubscription(ctx, caller, newTier)
	if err != nil {
		status, body := h.errorFor(ctx, err, changeSubscriptionOperation)
		return billingapi.ChangeSubscriptiondefaultJSONResponse{Body: body, StatusCode: status}, nil
	}
	return billingapi.ChangeSubscription200JSONResponse(toAPIPlanChange(change)), nil
}

func (h *Handler) CustomerPortal(ctx context.Context, request billingapi.CustomerPortalRequestObject) (billingapi.CustomerPortalResponseObject, error) {
	caller, ok := callerFrom(ctx)
	if !ok {
		return billingapi.CustomerPortaldefaultJSONResponse{Body: unauthenticated, StatusCode: http.StatusUnauthorized}, nil
	}

	url, err := h.svc.CustomerPortal(ctx, caller, deref(request.Params.Origin))
	if err != nil {
		status, body := h.errorFor(ctx, err, customerPortalOperation)
		return billingapi.CustomerPortaldefaultJSONResponse{Body: body, StatusCode: status}, nil
	}
	return billingapi.CustomerPortal200JSONResponse{Url: url}, nil
}

func (h *Handler) CreateFactory(ctx context.Context, request billingapi.CreateFactoryRequestObject) (billingapi.CreateFactoryResponseObject, error) {
	caller, ok := callerFrom(ctx)
	if !ok {
		return billingapi.CreateFactorydefaultJSONResponse{Body: unauthenticated, StatusCode: http.StatusUnauthorized}, nil
	}

	var name string
	if request.Body != nil {
		name = request.Body.Name
	}

	factory, err := h.svc.CreateFactory(ctx, caller, name)
	if err != nil {
		status, body := h.errorFor(ctx, err, createFactoryOperation)
		return billingapi.CreateFactorydefaultJSONResponse{Body: body, StatusCode: status}, nil
	}
	return billingapi.CreateFactory201JSONResponse(toAPIFactory(factory)), nil
}

func (h *Handler) AccessGate(ctx context.Context, _ billingapi.AccessGateRequestObject) (billingapi.AccessGateResponseObject, error) {
	caller, ok := callerFrom(ctx)
	if !ok {
		return billingapi.AccessGatedefaultJSONResponse{Body: unauthenticated, StatusCode: http.StatusUnauthorized}, nil
	}

	access, err := h.svc.Access(ctx, caller)
	if err != nil {
		status, body := h.errorFor(ctx, err, accessOperation)
		return billingapi.AccessGatedefaultJSONResponse{Body: body, StatusCode: status}, nil
	}
	return billingapi.AccessGate200JSONResponse(toAPIAccess(access)), nil
}

// Webhook returns the provider webhook endpoint. The signature is verified against secret
// before the event reaches the service.
func (h *Handler) Webhook(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := platformlogging.StepFrom(r.Context(), h.logger, platformlogging.StepWebhook)

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookPayload))
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "unreadable payload")
			return
		}

		event, err := billing.ParseWebhookEvent(payload, r.Header.Get("Stripe-Signature"), secret)
		if err != nil {
			logger.Warn("rejected webhook", zap.Error(err))
			respond.Error(w, http.StatusBadRequest, "invalid webhook signature")
			return
		}

		if _, err := h.svc.HandleWebhook(r.Context(), event); err != nil {
			logger.Error("webhook handling failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type),
				zap.Error(err),
			)
			respond.Error(w, http.StatusInternalServerError, "webhook handling failed")
			return
		}
		respond.JSON(w, http.StatusOK, webhookResponse{Received: true})
	}
}

func callerFrom(ctx context.Context) (service.Caller, bool) {
	membership, ok := tenant.FromContext(ctx)
	if !ok {
		return service.Caller{}, false
	}
	return service.CallerFromMembership(membership), true
}

func (h *Handler) errorFor(ctx context.Context, err error, op operation) (int, billingapi.Error) {
	status, message := classifyError(err)

	logger := h.loggerFrom(ctx).With(zap.String("operation", string(op)), zap.Int("status", status))
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("subscription operation failed", zap.Error(err))
	case status == http.StatusNotFound:
		logger.Info("subscription resource not found", zap.Error(err))
	default:
		logger.Warn("subscription request rejected", zap.Error(err))
	}

	body := billingapi.Error{Error: message}
	if errors.Is(err, service.ErrContactSalesRequired) {
		contactSales := true
		body.ContactSales = &contactSales
	}
	return status, body
}

func classifyError(err error) (int, string) {
	var validationErr *service.ValidationError
	var providerErr *service.ProviderError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, service.ErrContactSalesRequired),
		errors.Is(err, service.ErrAlreadyOnPlan),
		errors.Is(err, service.ErrNoActiveSubscription),
		errors.Is(err, service.ErrFactoryRequired),
		errors.Is(err, service.ErrFactoryExists),
		errors.Is(err, service.ErrSubscriptionExists),
		errors.Is(err, service.ErrPlanChangeInProgress):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &providerErr):
		return http.StatusInternalServerError, providerErr.Message()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// requestError answers bodies the generated decoder could not parse.
func (h *Handler) requestError(w http.ResponseWriter, r *http.Request, err error) {
	h.loggerFrom(r.Context()).Warn("undecodable request body", zap.Error(err))
	respond.Error(w, http.StatusBadRequest, "invalid request body")
}

func (h *Handler) parameterError(w http.ResponseWriter, r *http.Request, err error) {
	h.loggerFrom(r.Context()).Warn("invalid request parameter", zap.Error(err))
	respond.Error(w, http.StatusBadRequest, err.Error())
}

func (h *Handler) responseError(w http.ResponseWriter, r *http.Request, err error) {
	h.loggerFrom(r.Context()).Error("write response", zap.Error(err))
	respond.Error(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok && logger != nil {
		return logger
	}
	return h.logger
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
