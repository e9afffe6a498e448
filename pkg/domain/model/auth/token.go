package auth

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/errs"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/clock"
)

const (
	// CookieName is the cookie set by the account service after login
	CookieName = "auth-token"

	// ClaimUserID holds the user ID in session tokens
	ClaimUserID = "id"
	ClaimEmail  = "email"

	TokenExpireDuration = 7 * 24 * time.Hour
)

// Claims is the authenticated principal of a request
type Claims struct {
	UserID    types.UserID `json:"id"`
	Email     string       `json:"email"`
	ExpiresAt time.Time    `json:"exp"`
}

// Verifier checks HS256 session tokens issued by the account service.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, goerr.New("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify parses and validates a signed token. Any failure is tagged as
// unauthorized.
func (x *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, goerr.New("empty token", goerr.T(errs.TagUnauthorized))
	}

	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, x.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return clock.Now(ctx) })),
		jwt.WithAcceptableSkew(time.Minute),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid token", goerr.T(errs.TagUnauthorized))
	}

	claims := &Claims{ExpiresAt: parsed.Expiration()}

	if v, ok := parsed.Get(ClaimUserID); ok {
		if id, ok := v.(string); ok {
			claims.UserID = types.UserID(id)
		}
	}
	if claims.UserID == "" {
		claims.UserID = types.UserID(parsed.Subject())
	}
	if claims.UserID == "" {
		return nil, goerr.New("token has no user id", goerr.T(errs.TagUnauthorized))
	}

	if v, ok := parsed.Get(ClaimEmail); ok {
		if email, ok := v.(string); ok {
			claims.Email = email
		}
	}

	return claims, nil
}

// Issue signs a token for the user. It is used by the CLI and tests; the
// account service issues tokens in production.
func (x *Verifier) Issue(ctx context.Context, userID types.UserID, email string, expiresIn time.Duration) (string, error) {
	now := clock.Now(ctx)
	token, err := jwt.NewBuilder().
		Claim(ClaimUserID, userID.String()).
		Claim(ClaimEmail, email).
		IssuedAt(now).
		Expiration(now.Add(expiresIn)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, x.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}

	return string(signed), nil
}

type ctxClaimsKey struct{}

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(ctxClaimsKey{}).(*Claims)
	if !ok {
		return nil, goerr.New("claims not found in context", goerr.T(errs.TagUnauthorized))
	}
	return claims, nil
}
