package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
	"github.com/99minutos/accounts-api/internal/infrastructure/metrics"
)

const (
	msgInvalidLogin      = "invalid username or password"
	msgUsernameExists    = "Username already exists"
	msgEmailExists       = "Email already exists"
	msgUserExists        = "Email or username already exists"
	msgUserNotFound      = "user not found"
	msgRegisterSucceeded = "User registered successfully"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account. It does not log the user in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
	})
	record("register", err)
	if err != nil {
		if field, ok := domain.DuplicateField(err); ok {
			metrics.DuplicateRegistrationsTotal.WithLabelValues(field).Inc()
			return echo.NewHTTPError(http.StatusConflict, duplicateMessage(field))
		}
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: msgRegisterSucceeded,
		User:    domain.ClaimsFor(user),
	})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	record("login", err)
	if err != nil {
		// Unknown user and wrong password are indistinguishable to the caller.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidLogin)
		}
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: domain.ClaimsFor(user)})
}

// Protected returns the identity of the bearer token's owner.
//
// @Summary      Fetch the authenticated identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  protectedResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	record("protected", nil)
	return c.JSON(http.StatusOK, protectedResponse{User: h.authService.Protected(claims)})
}

// UpdateProfile changes the caller's name and address and returns a fresh token.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, user, err := h.authService.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		Username:  claims.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
	})
	record("update_profile", err)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgUserNotFound)
		}
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: domain.ClaimsFor(user)})
}

func duplicateMessage(field string) string {
	switch field {
	case domain.FieldUsername:
		return msgUsernameExists
	case domain.FieldEmail:
		return msgEmailExists
	default:
		return msgUserExists
	}
}

func record(operation string, err error) {
	metrics.AuthRequestsTotal.WithLabelValues(operation, string(domain.OutcomeOf(err))).Inc()
}
