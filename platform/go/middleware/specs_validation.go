package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
	"github.com/threadline-io/production-portal/platform/go/respond"
)

// ValidateAuthenticationViaSwagger satisfies operations that declare bearerAuth in the contract.
// The JWT middleware runs first, so verified credentials are expected on the request context.
func ValidateAuthenticationViaSwagger(_ context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != "bearerAuth" {
		return nil
	}
	r := input.RequestValidationInput.Request
	if r == nil {
		return fmt.Errorf("no request in validation input")
	}
	if _, ok := platformauth.UserFromContext(r.Context()); !ok {
		return fmt.Errorf("missing verified credentials")
	}
	return nil
}

// ContractValidator validates requests against the contract and answers violations with the
// JSON error body used by every endpoint.
func ContractValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	if spec == nil {
		panic("contract validator: spec is required")
	}
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: ValidateAuthenticationViaSwagger,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			respond.Error(w, statusCode, message)
		},
	})
}
