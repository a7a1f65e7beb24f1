package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
	"github.com/threadline-io/production-portal/platform/go/gcp"
)

// buildAuth constructs the JWT middleware and the identity deleter backed by the same auth provider.
func buildAuth(ctx context.Context, cfg config, logger *zap.Logger) (func(http.Handler) http.Handler, gcp.IdentityDeleter) {
	var (
		verify  platformauth.VerifyFunc
		deleter gcp.IdentityDeleter
	)
	switch cfg.AuthProvider {
	case "firebase":
		_, fbAuth, err := gcp.InitFirebaseAuth(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("init firebase auth", zap.Error(err))
		}
		verify = platformauth.FirebaseTokenVerifier(fbAuth)
		deleter = gcp.NewFirebaseIdentityDeleter(fbAuth)
	case "dev":
		logger.Warn("using dev auth middleware; do not use in production")
		verify = platformauth.UnsignedTokenVerifier()
		deleter = &gcp.NoopIdentityDeleter{}
	default:
		logger.Fatal("unsupported auth provider", zap.String("provider", cfg.AuthProvider))
	}

	return platformauth.JWT(verify, platformauth.DefaultCredentialExtractor), deleter
}
