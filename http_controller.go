package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/Raghul-K-N/sunrisers-property-listing-assistant/middleware/jwtware"
)

// Middleware is the route-guard surface exposed to hosting applications.
type Middleware interface {
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

// GetRouterSession rebuilds a SessionObject from claims stored in router
// locals by the JWT middleware.
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	protected := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.ErrorHandler,
	)

	app.
		Post(controller.Routes.Token, controller.TokenPost).
		SetName("auth-token.post")

	app.
		Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.
		Get(controller.Routes.Me, controller.Me, protected).
		SetName("me.get")

	app.
		Post(controller.Routes.ChangePassword, controller.ChangePasswordPost, protected).
		SetName("change-password.post")

	app.
		Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("forgot-password.post")

	app.
		Post(controller.Routes.RefreshToken, controller.RefreshTokenPost, protected).
		SetName("refresh-token.post")

	app.
		Get(fmt.Sprintf("%s/:uuid", controller.Routes.ResetPassword), controller.ResetPasswordVerify).
		SetName("reset-password.get")

	app.
		Post(fmt.Sprintf("%s/:uuid", controller.Routes.ResetPassword), controller.ResetPasswordExecute).
		SetName("reset-password.post")
}

type AuthControllerRoutes struct {
	Token          string
	Register       string
	Me             string
	ChangePassword string
	ForgotPassword string
	RefreshToken   string
	ResetPassword  string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Auth         Authenticator
	Auther       HTTPAuthenticator
	Config       Config
	Notifier     Notifier
	ActivitySink ActivitySink
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Token:          "/auth/token",
			Register:       "/auth/register",
			Me:             "/auth/me",
			ChangePassword: "/auth/change-password",
			ForgotPassword: "/auth/forgot-password",
			RefreshToken:   "/auth/refresh-token",
			ResetPassword:  "/auth/reset-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier, a username or an email
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// TokenResponse is the issued credential envelope
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenPost exchanges a credential pair for a bearer token.
func (a *AuthController) TokenPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.authError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload", "error", err)
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
	}

	registerUser := NewRegisterUserHandler(a.Repo).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	user, err := registerUser.Execute(ctx.Context(), req)
	if err != nil {
		a.Logger.Error("register user error", "error", err)

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
			return ctx.JSON(fiber.StatusConflict, map[string]any{
				"error":     richErr.Message,
				"text_code": richErr.TextCode,
			})
		}

		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, user)
}

// Me returns the profile of the resolved caller.
func (a *AuthController) Me(ctx router.Context) error {
	identity, err := a.resolveCaller(ctx)
	if err != nil {
		return a.authError(ctx, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), identity.Username())
	if err != nil {
		return a.authError(ctx, ErrIdentityGone)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

// ChangePasswordPayload holds values for a password change
type ChangePasswordPayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will validate the payload
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

func (a *AuthController) ChangePasswordPost(ctx router.Context) error {
	identity, err := a.resolveCaller(ctx)
	if err != nil {
		return a.authError(ctx, err)
	}

	payload := new(ChangePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("change password parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	changePassword := NewChangePasswordHandler(a.Repo).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	req := ChangePasswordMessage{
		UserID:          identity.ID(),
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	}

	if err := changePassword.Execute(ctx.Context(), req); err != nil {
		if goerrors.Is(err, ErrInvalidCredentials) {
			return a.authError(ctx, err)
		}
		a.Logger.Error("change password error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]string{
		"message": "password updated",
	})
}

// ForgotPasswordPayload holds values for a password reset request
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

// ForgotPasswordPost acknowledges every well-formed request with the same
// message. Whether the email matched an account never shows in the response.
func (a *AuthController) ForgotPasswordPost(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("forgot password parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := InitializePasswordResetMessage{
		Email: payload.Email,
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo).
		WithNotifier(a.Notifier).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset init error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]string{
		"message": ResetAcknowledgment,
	})
}

// RefreshTokenPost issues a fresh token for an already authenticated caller.
func (a *AuthController) RefreshTokenPost(ctx router.Context) error {
	identity, err := a.resolveCaller(ctx)
	if err != nil {
		return a.authError(ctx, err)
	}

	token, err := a.Auth.Refresh(ctx.Context(), identity)
	if err != nil {
		return a.authError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// ResetPasswordVerify checks whether a reset link is still redeemable.
func (a *AuthController) ResetPasswordVerify(ctx router.Context) error {
	sessionID := ctx.Param("uuid")

	var resp *AccountVerificationResponse
	input := AccountVerificationMessage{
		Session: sessionID,
		OnResponse: func(r *AccountVerificationResponse) {
			resp = r
		},
	}

	accountVerify := NewAccountVerificationHandler(a.Repo)

	if err := accountVerify.Execute(ctx.Context(), input); err != nil {
		a.Logger.Error("reset verification error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if !resp.Found || resp.Expired {
		return ctx.JSON(fiber.StatusNotFound, map[string]any{
			"error": "invalid or expired password reset token",
		})
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"session": sessionID,
		"valid":   true,
	})
}

// ResetPasswordPayload holds values for redeeming a reset link
type ResetPasswordPayload struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// ResetPasswordExecute redeems a reset link and replaces the password.
func (a *AuthController) ResetPasswordExecute(ctx router.Context) error {
	sessionID := ctx.Param("uuid")
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset password parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	input := FinalizePasswordResetMessage{
		Session:  sessionID,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(ctx.Context(), input); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			status := fiber.StatusBadRequest
			if richErr.Category == goerrors.CategoryNotFound {
				status = fiber.StatusNotFound
			}
			return ctx.JSON(status, map[string]any{
				"error":     richErr.Message,
				"text_code": richErr.TextCode,
			})
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]string{
		"message": "password updated",
	})
}

// resolveCaller runs the full session resolution for the request's bearer
// token: verify, reload the identity, refresh last-seen metadata.
func (a *AuthController) resolveCaller(ctx router.Context) (Identity, error) {
	raw, err := jwtware.ExtractRawTokenFromContext(ctx, jwtware.GetExtractors(
		"header:"+router.HeaderAuthorization,
		a.Config.GetAuthScheme(),
	))
	if err != nil {
		return nil, ErrTokenMalformed
	}

	return a.Auth.Resolve(ctx.Context(), raw)
}

func (a *AuthController) authError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "authentication error").
			WithCode(goerrors.CodeUnauthorized)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusUnauthorized
	}

	return ctx.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field-to-message map suitable for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.JSON(fiber.StatusInternalServerError, map[string]string{
		"error": err.Error(),
	})
}
