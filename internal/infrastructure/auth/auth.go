// Package auth guards the API with bearer JWTs verified against a JWKS
// endpoint. It is a no-op unless AUTH_ENABLED is set.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain/principal"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// ContextKeyToken is the gin context key holding the parsed token.
const ContextKeyToken = "auth_token"

// Validator validates JWTs using JWKS.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	log = log.With().Str("component", "auth").Logger()
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:  cfg,
		log:  log,
		jwks: jwks,
	}, nil
}

// Enabled reports whether requests are authenticated.
func (v *Validator) Enabled() bool {
	return v != nil && v.cfg.AuthEnabled && v.jwks != nil
}

// Middleware enforces JWT auth when enabled and attaches the caller's
// principal to the request context. With auth disabled the configured
// default identity is attached instead.
func (v *Validator) Middleware() gin.HandlerFunc {
	if !v.Enabled() {
		return func(c *gin.Context) {
			setPrincipal(c, v.defaultPrincipal())
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
			jwt.WithAudience(v.cfg.AuthAudience),
			jwt.WithIssuer(v.cfg.AuthIssuer),
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		)
		if err != nil || !token.Valid {
			v.log.Debug().Err(err).Msg("rejected bearer token")
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, _ := token.Claims.(jwt.MapClaims)
		caller, ok := v.principalFromClaims(claims)
		if !ok {
			abortUnauthorized(c, "token has no subject")
			return
		}

		c.Set(ContextKeyToken, token)
		setPrincipal(c, caller)
		c.Next()
	}
}

func (v *Validator) defaultPrincipal() principal.Principal {
	return principal.Principal{
		Subject:        v.cfg.DefaultAuthorID,
		OrganizationID: v.cfg.DefaultOrganizationID,
		AuthMethod:     principal.AuthMethodNone,
	}
}

func (v *Validator) principalFromClaims(claims jwt.MapClaims) (principal.Principal, bool) {
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return principal.Principal{}, false
	}
	organization, _ := claims[v.cfg.AuthOrganizationClaim].(string)
	if strings.TrimSpace(organization) == "" {
		organization = v.cfg.DefaultOrganizationID
	}
	return principal.Principal{
		Subject:        subject,
		OrganizationID: organization,
		AuthMethod:     principal.AuthMethodJWT,
	}, true
}

func setPrincipal(c *gin.Context, p principal.Principal) {
	c.Request = c.Request.WithContext(principal.WithContext(c.Request.Context(), p))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, platformerrors.HTTPErrorResponse{
		Error: &platformerrors.HTTPErrorDetail{
			Message: message,
			Type:    "unauthorized_error",
		},
	})
}
