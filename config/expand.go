package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// SecretRefPrefix marks a value resolved by ResolveSecret.
const SecretRefPrefix = "secretref:"

// ExpandEnvStrict expands environment variables in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded via os.ExpandEnv.
//   - If `${VAR}` is present but VAR is missing from the environment, it errors.
//   - `$$` emits a literal `$`.
func ExpandEnvStrict(s string) (string, error) {
	const dollarSentinel = "\x00WATCHTOWER_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(match[1]); !ok {
			missing[match[1]] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(keys, ", "))
	}

	s = os.ExpandEnv(s)
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}

// ResolveSecret resolves a configured secret value.
//
//   - secretref:env:NAME reads NAME, which must be set.
//   - secretref:file:PATH reads PATH with surrounding whitespace trimmed.
//   - anything else goes through ExpandEnvStrict.
func ResolveSecret(value string) (string, error) {
	ref, ok := strings.CutPrefix(value, SecretRefPrefix)
	if !ok {
		return ExpandEnvStrict(value)
	}

	source, target, _ := strings.Cut(ref, ":")
	switch source {
	case "env":
		v, ok := os.LookupEnv(target)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingEnv, target)
		}
		return v, nil
	case "file":
		data, err := os.ReadFile(target)
		if err != nil {
			return "", fmt.Errorf("config: read secret file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSecretRef, source)
	}
}
