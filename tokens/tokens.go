// Package tokens issues and verifies the scoped signing capability tokens
// that bind a signature request to a document and signer. Tokens are signed
// with a secret dedicated to signing links, never with the user-session key.
package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/trazahq/go-signing/core"
)

const (
	// Bounds on the send-time expiry selection, in days.
	MinExpiryDays = core.MinTokenExpiryDays
	MaxExpiryDays = core.MaxTokenExpiryDays
)

type Option func(*Service)

// WithClock overrides the envelope-expiry clock. Tests use it; production
// code never should.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithKeyID(keyID string) Option {
	return func(s *Service) {
		s.keyID = strings.TrimSpace(keyID)
	}
}

// Service mints and verifies HS256 signing tokens. Verify performs no I/O;
// callers enforce the stored business expiry separately.
type Service struct {
	secret string
	keyID  string
	now    func() time.Time
}

func New(secret string, opts ...Option) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("tokens: signing secret is required")
	}
	svc := &Service{
		secret: secret,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

type tokenClaims struct {
	SignatureID string `json:"sig"`
	DocumentID  string `json:"doc"`
	SignerEmail string `json:"eml"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}

// Issue mints a capability token for one signature request. Out-of-range
// expiresInDays values are rejected, never clamped.
func (s *Service) Issue(documentID, signatureID, signerEmail string, expiresInDays int) (string, error) {
	if s == nil {
		return "", fmt.Errorf("tokens: service is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	signatureID = strings.TrimSpace(signatureID)
	signerEmail = strings.TrimSpace(strings.ToLower(signerEmail))
	if documentID == "" || signatureID == "" || signerEmail == "" {
		return "", fmt.Errorf("tokens: document id, signature id and signer email are required")
	}
	if expiresInDays < MinExpiryDays || expiresInDays > MaxExpiryDays {
		return "", fmt.Errorf(
			"tokens: expires_in_days must be between %d and %d",
			MinExpiryDays,
			MaxExpiryDays,
		)
	}

	now := s.now()
	claims := tokenClaims{
		SignatureID: signatureID,
		DocumentID:  documentID,
		SignerEmail: signerEmail,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(time.Duration(expiresInDays) * 24 * time.Hour).Unix(),
	}

	header := map[string]any{"alg": "HS256", "typ": "JWT"}
	if s.keyID != "" {
		header["kid"] = s.keyID
	}
	headerRaw, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("tokens: marshal token header: %w", err)
	}
	claimsRaw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("tokens: marshal token claims: %w", err)
	}

	signed := base64.RawURLEncoding.EncodeToString(headerRaw) +
		"." +
		base64.RawURLEncoding.EncodeToString(claimsRaw)
	return signed + "." + s.sign(signed), nil
}

// Verify checks the token's structure, signature, and envelope expiry and
// returns the bound claims. It never touches storage; the business
// tokenExpiresAt field is the caller's check.
func (s *Service) Verify(token string) (core.TokenClaims, error) {
	if s == nil {
		return core.TokenClaims{}, fmt.Errorf("tokens: service is not configured")
	}
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return core.TokenClaims{}, newInvalidTokenError("tokens: malformed token")
	}

	expected := s.sign(parts[0] + "." + parts[1])
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[2])) != 1 {
		return core.TokenClaims{}, newInvalidTokenError("tokens: token signature mismatch")
	}

	claimsRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return core.TokenClaims{}, newInvalidTokenError("tokens: malformed token claims")
	}
	var claims tokenClaims
	if err := json.Unmarshal(claimsRaw, &claims); err != nil {
		return core.TokenClaims{}, newInvalidTokenError("tokens: malformed token claims")
	}
	if claims.SignatureID == "" || claims.DocumentID == "" || claims.SignerEmail == "" {
		return core.TokenClaims{}, newInvalidTokenError("tokens: token claims are incomplete")
	}

	expiresAt := time.Unix(claims.ExpiresAt, 0).UTC()
	if claims.ExpiresAt == 0 || s.now().After(expiresAt) {
		return core.TokenClaims{}, newExpiredTokenError("tokens: token envelope has expired")
	}

	return core.TokenClaims{
		SignatureID: claims.SignatureID,
		DocumentID:  claims.DocumentID,
		SignerEmail: claims.SignerEmail,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func newInvalidTokenError(message string) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(core.SigningErrorInvalidToken)
	err.Code = http.StatusUnauthorized
	return err
}

func newExpiredTokenError(message string) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithTextCode(core.SigningErrorExpired)
	err.Code = http.StatusGone
	return err
}

var _ core.TokenService = (*Service)(nil)
