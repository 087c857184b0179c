package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/marketplace/internal/domain/user"
	"github.com/example/marketplace/internal/service"
	"go.uber.org/zap"
)

// GetAuthToken exchanges a username and password for a bearer token. The
// credentials arrive as query parameters.
func (h *Handlers) GetAuthToken(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	password := r.URL.Query().Get("password")

	if username == "" || password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "FAILED",
			"message": "Username and password are required",
		})
		return
	}

	token, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"status":  "FAILED",
				"message": "Invalid credentials",
			})
			return
		}
		h.logger.Error("auth token issue failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "FAILED",
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "SUCCESS",
		"accessToken": token,
	})
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			respondMessage(w, http.StatusConflict, "Username already taken")
			return
		}
		h.logger.Error("user creation failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Server error",
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    map[string]string{"id": u.ID, "username": u.Username},
	})
}
