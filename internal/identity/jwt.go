package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dbctrade/ordercore/internal/rbac"
)

// Claims are the JWT claims minted by the storefront's auth service.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Role        string `json:"role"`
	Suspended   bool   `json:"suspended,omitempty"`
}

// JWTResolver validates HMAC-signed bearer tokens. It holds no per-request
// state, so a single instance is shared across the whole server.
type JWTResolver struct {
	secret []byte
}

var _ Resolver = (*JWTResolver)(nil)

func NewJWTResolver(secret []byte) *JWTResolver {
	return &JWTResolver{secret: secret}
}

// Resolve parses and verifies the token. An empty credential is the explicit
// anonymous outcome (ErrNoCredential); any parse or signature failure,
// including expiry, maps to ErrInvalidCredential.
func (r *JWTResolver) Resolve(ctx context.Context, credential string) (*User, error) {
	if credential == "" {
		return nil, ErrNoCredential
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.Subject == "" {
		return nil, ErrInvalidCredential
	}

	status := StatusActive
	if claims.Suspended {
		status = StatusSuspended
	}

	user := &User{
		ID:          claims.Subject,
		Email:       claims.Email,
		CompanyName: claims.CompanyName,
		Role:        rbac.Role(claims.Role),
		Status:      status,
	}
	if !user.Active() {
		return nil, ErrSuspended
	}
	return user, nil
}

// MintToken signs a token for the given user. Used by tests and by the
// ops tooling that provisions service accounts; the storefront's real auth
// flow lives outside this core.
func MintToken(secret []byte, user User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       user.Email,
		CompanyName: user.CompanyName,
		Role:        string(user.Role),
		Suspended:   user.Status == StatusSuspended,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
