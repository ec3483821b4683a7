package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spandan3/smart-waste-classifier/internal/preview"
)

const previewAudience = "preview"

var (
	// ErrMissingSecret is returned when no signing secret was configured.
	ErrMissingSecret = errors.New("missing preview signing secret")
	// ErrInvalidToken covers malformed, tampered and expired tokens.
	ErrInvalidToken = errors.New("invalid preview token")
)

// PreviewSigner turns preview references into short lived URL tokens.
type PreviewSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewPreviewSigner builds a signer. A zero ttl issues tokens without expiry.
func NewPreviewSigner(secret string, ttl time.Duration) (*PreviewSigner, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &PreviewSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign issues a token whose subject is ref.
func (s *PreviewSigner) Sign(ref preview.Ref) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  string(ref),
		Audience: jwt.ClaimStrings{previewAudience},
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the token and returns the reference it names. A valid token
// does not mean the reference is still live; the store decides that.
func (s *PreviewSigner) Verify(tokenString string) (preview.Ref, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithAudience(previewAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return preview.Ref(claims.Subject), nil
}
