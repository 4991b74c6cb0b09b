package handler

import (
	"net/http"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/service"
	"conduit/internal/transport/http/middleware"
)

// AuthHandler groups account endpoints: registration, login and the current user.
type AuthHandler struct {
	userService *service.UserService
}

// NewAuthHandler wires dependencies for account endpoints.
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register handles POST /users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.User)
	if err != nil {
		httputil.WriteServiceError(w, "Register handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.UserResponse{User: *user})
}

// Login handles POST /users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), req.User)
	if err != nil {
		httputil.WriteServiceError(w, "Login handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserResponse{User: *user})
}

// Current handles GET /user
func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserResponse{User: *h.userService.Current(session)})
}

// Update handles PUT /user
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), session, req.User)
	if err != nil {
		httputil.WriteServiceError(w, "UpdateUser handler", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserResponse{User: *user})
}
