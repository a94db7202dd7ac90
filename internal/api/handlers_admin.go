package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/discernment180-api/internal/database"
	"github.com/zapponejosh/discernment180-api/internal/logger"
)

// ListUsers handles GET /api/v1/admin/users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		logger.Error(r.Context(), "failed to list users", err)
		WriteInternalError(w, "Failed to retrieve users")
		return
	}

	WriteSuccess(w, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// CreateUser handles POST /api/v1/admin/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		WriteBadRequest(w, "email is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteBadRequest(w, "email is not a valid address")
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Email, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			WriteError(w, http.StatusConflict, "A user with this email already exists", "DUPLICATE")
			return
		}
		logger.Error(r.Context(), "failed to create user", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	WriteCreated(w, user)
}

// CreateAPIKey handles POST /api/v1/admin/users/{userID}/keys
func (h *Handlers) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), userID); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "User not found")
			return
		}
		logger.Error(r.Context(), "failed to get user", err)
		WriteInternalError(w, "Failed to verify user")
		return
	}

	key, err := h.db.CreateAPIKey(r.Context(), userID, req.Name)
	if err != nil {
		logger.Error(r.Context(), "failed to create api key", err)
		WriteInternalError(w, "Failed to create API key")
		return
	}

	WriteCreated(w, map[string]any{
		"api_key": key,
		"warning": "Store this key now; it cannot be shown again.",
	})
}
