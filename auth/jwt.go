package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT validator.
type JWTConfig struct {
	// Issuer is the expected token issuer (iss claim).
	Issuer string

	// Audience is the expected token audience (aud claim).
	Audience string

	// Methods lists accepted signing algorithms.
	// Default: HS256, HS384, HS512
	Methods []string

	// Subjects, when non-empty, restricts the sub claim.
	Subjects []string
}

// KeyProvider retrieves signing keys for JWT validation.
type KeyProvider interface {
	// GetKey returns the key for the given key ID.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider provides a static signing key.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	if len(p.key) == 0 {
		return nil, ErrKeyNotFound
	}
	return p.key, nil
}

// JWTValidator accepts requests carrying a signed bearer token. Use its
// Validate method as Config.CustomValidator.
type JWTValidator struct {
	config      JWTConfig
	keyProvider KeyProvider
	parser      *jwt.Parser
}

// NewJWTValidator creates a new JWT validator.
func NewJWTValidator(config JWTConfig, keyProvider KeyProvider) *JWTValidator {
	if len(config.Methods) == 0 {
		config.Methods = []string{"HS256", "HS384", "HS512"}
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(config.Methods), jwt.WithExpirationRequired()}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &JWTValidator{
		config:      config,
		keyProvider: keyProvider,
		parser:      jwt.NewParser(opts...),
	}
}

// Verify parses and validates a raw token and returns its claims.
func (v *JWTValidator) Verify(ctx context.Context, raw string) (jwt.MapClaims, error) {
	if raw == "" {
		return nil, ErrMissingCredentials
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return v.keyProvider.GetKey(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	if len(v.config.Subjects) > 0 {
		sub, _ := claims.GetSubject()
		if !containsString(v.config.Subjects, sub) {
			return nil, ErrInvalidCredentials
		}
	}

	return claims, nil
}

// Validate reports whether r carries a valid bearer JWT.
func (v *JWTValidator) Validate(r *Request) bool {
	raw, ok := cutPrefixFold(r.GetHeader(HeaderAuthorization), "Bearer ")
	if !ok {
		return false
	}
	_, err := v.Verify(context.Background(), strings.TrimSpace(raw))
	return err == nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
