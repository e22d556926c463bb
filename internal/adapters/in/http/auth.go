package http

import (
	"strings"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

var ErrJWTSecretIsRequired = errs.NewValueIsRequiredError("jwtSecret")

// Claims carry the caller identity. Subject is the actor id, Role one of the client roles.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator turns HS256 bearer tokens into actors. The system role is never accepted
// from a token.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrJWTSecretIsRequired
	}
	return &Authenticator{secret: []byte(secret)}, nil
}

// IssueToken signs a token for actor that expires after ttl.
func (a *Authenticator) IssueToken(actor kernel.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: actor.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate validates token and returns the actor it names.
func (a *Authenticator) Authenticate(token string) (kernel.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return kernel.Actor{}, err
	}

	role, err := kernel.ParseClientRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, err
	}
	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, err
	}
	return kernel.Actor{ID: id, Role: role}, nil
}

// Middleware resolves the caller from the Authorization header. Websocket handshakes may pass
// the token in the token query parameter instead, since browsers cannot set headers on them.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return ErrUnauthorized
			}

			actor, err := a.Authenticate(token)
			if err != nil {
				return ErrUnauthorized.WithInternal(err)
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c.IsWebSocket() {
		return c.QueryParam("token")
	}
	return ""
}

// ActorFrom returns the authenticated caller of the request.
func ActorFrom(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, ErrUnauthorized
	}
	return actor, nil
}

func actorString(c echo.Context) string {
	actor, err := ActorFrom(c)
	if err != nil {
		return "anonymous"
	}
	return actor.String()
}

// RequireRole rejects callers that act in none of roles.
func RequireRole(roles ...kernel.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := ActorFrom(c)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if actor.Role == role {
					return next(c)
				}
			}
			return errs.NewAccessDeniedError(actor.String(), c.Request().Method+" "+c.Path())
		}
	}
}
