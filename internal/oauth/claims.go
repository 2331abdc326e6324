package oauth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// DecodeClaims decodes the claims payload of a JWT-shaped token without
// any signature or expiry verification. It exists for claim extraction
// only and must never feed a trust decision.
//
// Returns nil for malformed input: fewer than two dot-separated
// segments, a payload that is not valid base64url, or one that is not
// valid JSON.
func DecodeClaims(token string) map[string]interface{} {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	return claims
}

// extractAccountID returns the account identifier from decoded claims,
// preferring the provider-specific account_id claim over the standard
// subject claim. Returns "" when neither holds a string.
func extractAccountID(claims map[string]interface{}) string {
	if claims == nil {
		return ""
	}
	for _, key := range []string{"account_id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// extractExpiry reads the exp claim (seconds since epoch) and converts
// it to milliseconds. Returns 0 if the claim is absent or not numeric.
func extractExpiry(claims map[string]interface{}) int64 {
	if claims == nil {
		return 0
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return 0
	}
	return int64(exp) * 1000
}
