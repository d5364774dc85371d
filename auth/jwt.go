package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"swiss-pairing-server/matcherrors"
)

const bearerPrefix = "Bearer "

// Verifier validates admin JWTs signed by the keys published at
// <baseURL>/.well-known/jwks.json.
type Verifier struct {
	issuer  string
	role    string
	keyfunc jwt.Keyfunc
	methods []string
}

// NewVerifier fetches the JWKS for baseURL. If role is non-empty, tokens must
// carry a matching "role" claim.
func NewVerifier(baseURL, role string) (*Verifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("auth base URL is not set")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid auth base URL %q", baseURL)
	}
	jwks, err := keyfunc.NewDefault([]string{baseURL + "/.well-known/jwks.json"})
	if err != nil {
		return nil, fmt.Errorf("load JWKS: %w", err)
	}
	return newVerifier(u.Scheme+"://"+u.Host, role, jwks.Keyfunc), nil
}

func newVerifier(issuer, role string, kf jwt.Keyfunc) *Verifier {
	return &Verifier{
		issuer:  issuer,
		role:    role,
		keyfunc: kf,
		methods: []string{"EdDSA", "RS256", "ES256"},
	}
}

// Validate parses and verifies tokenString and returns its claims.
func (v *Verifier) Validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, v.keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods(v.methods))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Authorize checks the request's bearer token and returns the subject.
// Errors wrap matcherrors.ErrUnauthorized or matcherrors.ErrForbidden.
func (v *Verifier) Authorize(r *http.Request) (string, error) {
	token, ok := BearerToken(r)
	if !ok {
		return "", matcherrors.ErrUnauthorized
	}
	claims, err := v.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", matcherrors.ErrUnauthorized, err)
	}
	if v.role != "" {
		if role, _ := claims["role"].(string); role != v.role {
			return "", fmt.Errorf("%w: role %q required", matcherrors.ErrForbidden, v.role)
		}
	}
	return SubjectFromClaims(claims), nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(bearerPrefix):])
	return token, token != ""
}

// SubjectFromClaims returns the user id from claims ("sub" or "id").
func SubjectFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
