package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
	"github.com/DianaBudova/AdvertisingAgency/pkg/httpmiddleware"
)

// APIKeyHeader carries the client API key.
const APIKeyHeader = "api_key"

var errUnauthorized = errors.New("unauthorized")

// Security authenticates API requests via HMAC-SHA256 hashed API keys.
type Security struct {
	apikeys identity.APIKeyRepository
	pepper  []byte
}

// NewSecurity creates a Security with the given API key repository and HMAC
// pepper.
func NewSecurity(apikeys identity.APIKeyRepository, pepper []byte) *Security {
	return &Security{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Authenticate checks the api_key header of r.
func (s *Security) Authenticate(r *http.Request) (*identity.APIKey, error) {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		return nil, errUnauthorized
	}
	computed := identity.HashAPIKey(key, s.pepper)

	info, err := s.apikeys.FindByHash(r.Context(), computed)
	if err != nil {
		zctx.From(r.Context()).Debug("API key lookup failed", zap.Error(err))
		return nil, errUnauthorized
	}

	// The stored hash is compared again in constant time.
	want, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, errUnauthorized
	}
	got, _ := hex.DecodeString(computed)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return nil, errUnauthorized
	}
	return info, nil
}

// Middleware rejects requests without a valid API key with 401.
func (s *Security) Middleware() httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, err := s.Authenticate(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			ctx := zctx.With(r.Context(), zap.String("api_key_id", info.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
