package shopify

import (
	"fmt"
	"net/url"
	"time"

	"gooscale-shopify-relay/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenClaims are the claims App Bridge puts in an embedded admin session token
type SessionTokenClaims struct {
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// SessionTokenVerifier validates App Bridge session tokens
type SessionTokenVerifier struct {
	apiKey    string
	apiSecret []byte
	validator ShopValidator
	leeway    time.Duration
}

func NewSessionTokenVerifier(apiKey, apiSecret string, validator ShopValidator) *SessionTokenVerifier {
	return &SessionTokenVerifier{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		validator: validator,
		leeway:    5 * time.Second,
	}
}

// Verify checks signature, audience and expiry and returns the shop domain
// taken from the dest claim.
func (v *SessionTokenVerifier) Verify(tokenString string) (string, *SessionTokenClaims, error) {
	claims := &SessionTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.apiSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidSessionToken, err)
	}

	dest, err := url.Parse(claims.Dest)
	if err != nil || dest.Host == "" {
		return "", nil, fmt.Errorf("%w: bad dest claim", domain.ErrInvalidSessionToken)
	}
	shop, err := v.validator.Normalize(dest.Host)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidSessionToken, err)
	}
	return shop, claims, nil
}

// Sign issues a session token for shop. Used by tests and local tooling.
func (v *SessionTokenVerifier) Sign(shop string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionTokenClaims{
		Dest: "https://" + shop,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://" + shop + "/admin",
			Audience:  jwt.ClaimStrings{v.apiKey},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.apiSecret)
}
