package auth

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/Raghul-K-N/sunrisers-property-listing-assistant/middleware/jwtware"
)

// HTTPAuthenticator is the surface the HTTP controller needs from the
// route-level authenticator.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) (string, error)
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

type RouteAuthenticator struct {
	auth             Authenticator
	tokens           TokenService
	validator        TokenValidator
	cfg              Config
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

// NewHTTPAuthenticator wires an Authenticator into the HTTP layer. Tokens
// travel as bearer credentials in the Authorization header.
func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	if tp, ok := auther.(interface{ TokenService() TokenService }); ok {
		a.tokens = tp.TokenService()
	} else {
		a.tokens = NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenTTL(),
			cfg.GetIssuer(),
			cfg.GetAudience(),
			defLogger{},
		)
	}

	a.validator = a.tokens
	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

// WithTokenValidator overrides token validation, e.g. with a
// MultiTokenValidator during signing key rotation.
func (a *RouteAuthenticator) WithTokenValidator(v TokenValidator) *RouteAuthenticator {
	if v != nil {
		a.validator = v
	}
	return a
}

// ProtectedRoute guards a route group behind bearer token validation. Claims
// land in router locals under the configured context key and in the standard
// context for downstream handlers.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return jwtware.New(jwtware.Config{
			ErrorHandler:    errorHandler,
			AuthScheme:      cfg.GetAuthScheme(),
			ContextKey:      cfg.GetContextKey(),
			TokenValidator:  bearerTokenValidator{validator: a.validator},
			ContextEnricher: ContextEnricherAdapter,
		})(hf)
	}
}

// Login verifies the payload's credential pair and returns a signed bearer
// token. The caller decides how the token travels back to the client.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	return token, nil
}

// MakeClientRouteAuthErrorHandler normalizes token failures into rich errors.
// With optional set the request proceeds unauthenticated instead of failing.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else if errors.Is(err, ErrTokenSignatureInvalid) {
			richErr = ErrTokenSignatureInvalid
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	status := richErr.Code
	if status == 0 {
		status = router.StatusUnauthorized
	}

	return c.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		status := richErr.Code
		if status == 0 {
			status = router.StatusInternalServerError
		}
		return c.JSON(status, map[string]any{
			"error":     richErr.Message,
			"text_code": richErr.TextCode,
		})
	}
}

// bearerTokenValidator bridges a TokenValidator into the JWT middleware
// without an import cycle.
type bearerTokenValidator struct {
	validator TokenValidator
}

func (v bearerTokenValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := v.validator.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
