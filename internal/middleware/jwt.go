package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"rentledger/internal/common"
	"rentledger/pkg/logger"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var errMissingSubject = errors.New("token has no subject")

// Authenticator verifies bearer tokens and extracts the user id from "sub".
type Authenticator struct {
	keyFunc jwt.Keyfunc
	methods []string
	jwks    *keyfunc.JWKS
}

// NewHMACAuthenticator verifies tokens signed with a shared secret.
func NewHMACAuthenticator(secret string) *Authenticator {
	key := []byte(secret)
	return &Authenticator{
		keyFunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		methods: []string{"HS256", "HS384", "HS512"},
	}
}

// NewJWKSAuthenticator verifies tokens against a remote key set that is
// refreshed in the background until Close is called.
func NewJWKSAuthenticator(jwksURL string) (*Authenticator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Log.WithError(err).Warn("JWKS refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load JWKS from %s: %w", jwksURL, err)
	}
	return newKeySetAuthenticator(jwks), nil
}

func newKeySetAuthenticator(jwks *keyfunc.JWKS) *Authenticator {
	return &Authenticator{keyFunc: jwks.Keyfunc, jwks: jwks}
}

// Close stops the background key refresh, if any.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// UserID validates tokenString and returns its subject.
func (a *Authenticator) UserID(tokenString string) (uuid.UUID, error) {
	var opts []jwt.ParserOption
	if len(a.methods) > 0 {
		opts = append(opts, jwt.WithValidMethods(a.methods))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, a.keyFunc, opts...)
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, errMissingSubject
	}
	return uuid.Parse(sub)
}

// Authenticate attaches the caller's user id to the request context when a
// valid bearer token is present. Requests without a token pass through and
// are rejected by the service layer. A token that is present but invalid is
// rejected here.
func (a *Authenticator) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				return common.SendError(c, common.NewUnauthenticatedError())
			}

			userID, err := a.UserID(tokenString)
			if err != nil {
				logger.Log.WithError(err).Debug("rejected bearer token")
				return common.SendError(c, common.NewUnauthenticatedError())
			}

			ctx := common.WithUserID(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
