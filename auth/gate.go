package auth

import "crypto/subtle"

// Decision is the gate's verdict. Reason is empty when authorized.
type Decision struct {
	Authorized bool
	Reason     string
}

func allow() Decision {
	return Decision{Authorized: true}
}

func deny(r *Request, cfg *Config, reason string) Decision {
	if cfg != nil && cfg.OnAuthFailure != nil {
		cfg.OnAuthFailure(r, reason)
	}
	return Decision{Authorized: false, Reason: reason}
}

// Validate decides whether r may read the health report.
//
// Order of evaluation:
//  1. nil cfg: deny when auth is required by environment, else allow.
//  2. CustomValidator, when set, is the decision.
//  3. No Token: deny when Required(), else allow.
//  4. Extract a candidate with ExtractToken and compare in constant time.
func Validate(r *Request, cfg *Config) Decision {
	if cfg == nil {
		if IsProduction() {
			return Decision{Authorized: false, Reason: ReasonNotConfigured}
		}
		return allow()
	}

	if cfg.CustomValidator != nil {
		if cfg.CustomValidator(r) {
			return allow()
		}
		return deny(r, cfg, ReasonCustomRejected)
	}

	if cfg.Token == "" {
		if cfg.Required() {
			return deny(r, cfg, ReasonTokenNotConfigured)
		}
		return allow()
	}

	provided := ExtractToken(r, cfg.AllowQueryToken)
	if provided == "" {
		return deny(r, cfg, ReasonNoToken)
	}
	if !ConstantTimeCompare(provided, cfg.Token) {
		return deny(r, cfg, ReasonInvalidToken)
	}
	return allow()
}

// ConstantTimeCompare performs constant-time comparison of two strings.
// Strings of different length compare unequal without inspecting content.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
