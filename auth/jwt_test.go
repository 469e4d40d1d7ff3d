package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestJWTValidator_Verify(t *testing.T) {
	v := NewJWTValidator(JWTConfig{Issuer: "watchtower", Audience: "monitor"}, NewStaticKeyProvider(testKey))
	ctx := context.Background()
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantErr error
	}{
		{"valid", jwt.MapClaims{"iss": "watchtower", "aud": "monitor", "sub": "probe", "exp": future}, nil},
		{"expired", jwt.MapClaims{"iss": "watchtower", "aud": "monitor", "exp": time.Now().Add(-time.Hour).Unix()}, ErrTokenExpired},
		{"wrong issuer", jwt.MapClaims{"iss": "other", "aud": "monitor", "exp": future}, ErrInvalidCredentials},
		{"wrong audience", jwt.MapClaims{"iss": "watchtower", "aud": "other", "exp": future}, ErrInvalidCredentials},
		{"no expiry", jwt.MapClaims{"iss": "watchtower", "aud": "monitor"}, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, signToken(t, tt.claims))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := v.Verify(ctx, "not.a.jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Verify(garbage) error = %v, want ErrTokenMalformed", err)
	}
	if _, err := v.Verify(ctx, ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Verify(empty) error = %v, want ErrMissingCredentials", err)
	}
}

func TestJWTValidator_Subjects(t *testing.T) {
	v := NewJWTValidator(JWTConfig{Subjects: []string{"uptime-robot"}}, NewStaticKeyProvider(testKey))
	exp := time.Now().Add(time.Hour).Unix()

	if _, err := v.Verify(context.Background(), signToken(t, jwt.MapClaims{"sub": "uptime-robot", "exp": exp})); err != nil {
		t.Errorf("allowed subject rejected: %v", err)
	}
	if _, err := v.Verify(context.Background(), signToken(t, jwt.MapClaims{"sub": "someone", "exp": exp})); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unlisted subject error = %v", err)
	}
}

func TestJWTValidator_AsCustomValidator(t *testing.T) {
	clearAuthEnv(t)
	v := NewJWTValidator(JWTConfig{}, NewStaticKeyProvider(testKey))
	cfg := &Config{CustomValidator: v.Validate}

	token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	r := reqWith(map[string]string{"Authorization": "Bearer " + token}, nil)
	if !Validate(r, cfg).Authorized {
		t.Error("valid JWT should be authorized")
	}

	r = reqWith(map[string]string{"Authorization": "Bearer " + token + "x"}, nil)
	if Validate(r, cfg).Authorized {
		t.Error("tampered JWT should be denied")
	}
}

func TestStaticKeyProvider_Empty(t *testing.T) {
	if _, err := NewStaticKeyProvider(nil).GetKey(context.Background(), ""); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("GetKey error = %v, want ErrKeyNotFound", err)
	}
}

func TestFromHTTP(t *testing.T) {
	if r := FromHTTP(nil); r.GetHeader("x") != "" || r.GetQuery("x") != "" {
		t.Error("FromHTTP(nil) should yield an empty request")
	}
}
