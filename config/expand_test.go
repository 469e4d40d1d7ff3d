package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING_B} c=${MISSING_A}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("expected ErrMissingEnv, got %v", err)
	}
	if !strings.Contains(err.Error(), "MISSING_A, MISSING_B") {
		t.Fatalf("expected sorted missing names in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestResolveSecret(t *testing.T) {
	t.Setenv("TOKEN_VAR", "from-env")
	path := writeFile(t, "token", "from-file\n")

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "plain", want: "plain"},
		{in: "${TOKEN_VAR}", want: "from-env"},
		{in: "secretref:env:TOKEN_VAR", want: "from-env"},
		{in: "secretref:file:" + path, want: "from-file"},
		{in: "secretref:env:WATCHTOWER_TEST_NOT_SET", wantErr: ErrMissingEnv},
		{in: "secretref:vault:kv/token", wantErr: ErrUnknownSecretRef},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveSecret(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveSecret() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSecret() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ResolveSecret() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveSecret_MissingFile(t *testing.T) {
	if _, err := ResolveSecret("secretref:file:" + filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
