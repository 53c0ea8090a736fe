package handler

import "github.com/99minutos/accounts-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=64"`
	Password  string `json:"password"   validate:"required,min=6,maxbytes=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	Address   string `json:"address"    validate:"required,max=255"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type updateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Address   string `json:"address"    validate:"required,max=255"`
}

type registerResponse struct {
	Message string        `json:"message"`
	User    domain.Claims `json:"user"`
}

type tokenResponse struct {
	Token string        `json:"token"`
	User  domain.Claims `json:"user"`
}

type protectedResponse struct {
	User domain.Claims `json:"user"`
}
