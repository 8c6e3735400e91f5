package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/busops/identity-service/internal/api/metrics"
	"github.com/busops/identity-service/internal/api/middleware"
	"github.com/busops/identity-service/internal/core/domain"
	"github.com/busops/identity-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email     string `json:"email"      validate:"required,email"                example:"john.doe@busops.local"`
	Phone     string `json:"phone"      validate:"required,digits,min=10,max=20" example:"9876543210"`
	Password  string `json:"password"   validate:"required,min=8,max=100"        example:"SecurePass123"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"        example:"John"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"        example:"Doe"`
	Role      string `json:"role"       validate:"omitempty,oneof=admin depot_manager driver conductor mechanic supervisor" example:"driver"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email" example:"john.doe@busops.local"`
	Password string `json:"password" validate:"required"       example:"SecurePass123"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type userResponse struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	ProfileImage  *string   `json:"profile_image"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type loginResponse struct {
	User   userResponse     `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

type logoutResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:        u.ID,
		Email:         u.Email,
		Phone:         u.Phone,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          string(u.Role),
		Status:        string(u.Status),
		ProfileImage:  u.ProfileImage,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// normalizePhone drops the spaces and dashes users type into phone numbers.
func normalizePhone(p string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(p))
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid request body")
	}
	return c.Validate(req)
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  Response{data=loginResponse}
// @Failure      409   {object}  Response
// @Failure      422   {object}  Response
// @Failure      500   {object}  Response
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) (err error) {
	defer func(start time.Time) { metrics.Observe(metrics.OpRegister, start, err) }(time.Now())

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid request body")
	}
	req.Phone = normalizePhone(req.Phone)
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}

	return Respond(c, http.StatusCreated, "User registered successfully", loginResponse{
		User:   toUserResponse(res.User),
		Tokens: res.Tokens,
	})
}

// Login authenticates a user and returns a token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Response{data=loginResponse}
// @Failure      401   {object}  Response
// @Failure      403   {object}  Response
// @Failure      422   {object}  Response
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func(start time.Time) { metrics.Observe(metrics.OpLogin, start, err) }(time.Now())

	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return Respond(c, http.StatusOK, "Login successful", loginResponse{
		User:   toUserResponse(res.User),
		Tokens: res.Tokens,
	})
}

// Refresh exchanges a refresh token for a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  Response{data=domain.TokenPair}
// @Failure      401   {object}  Response
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) (err error) {
	defer func(start time.Time) { metrics.Observe(metrics.OpRefresh, start, err) }(time.Now())

	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return Respond(c, http.StatusOK, "Token refreshed successfully", pair)
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response{data=userResponse}
// @Failure      401  {object}  Response
// @Failure      403  {object}  Response
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.Unauthorized(domain.MsgInvalidToken)
	}
	return Respond(c, http.StatusOK, "User retrieved successfully", toUserResponse(user))
}

// Logout is stateless; the client discards its tokens.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response{data=logoutResponse}
// @Failure      401  {object}  Response
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); !ok {
		return domain.Unauthorized(domain.MsgInvalidToken)
	}
	return Respond(c, http.StatusOK, "Logout successful", logoutResponse{Message: "Please discard your tokens"})
}
