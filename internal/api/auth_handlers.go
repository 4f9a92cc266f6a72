package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/storefront/internal/shopapi"
)

// Auth Handlers
//
// Credentials are verified by the remote API; these handlers forward the
// forms and manage the local session. Signin and signup run on the public
// client so a stale stored token never rides along.

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"rePassword"`
	Phone      string `json:"phone"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password != req.RePassword {
		respondJSONError(w, "Passwords do not match", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(r.Context(), shopapi.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		RePassword: req.RePassword,
		Phone:      req.Phone,
	})
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// GetSession reports who is signed in, for UI hydration.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		respondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	resp := map[string]any{
		"authenticated": true,
		"user":          user,
	}
	if exp, ok := h.session.TokenExpiresAt(); ok {
		resp["tokenExpiresAt"] = exp
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondJSONError(w, "email is required", http.StatusBadRequest)
		return
	}

	message, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *Handlers) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetCode string `json:"resetCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResetCode == "" {
		respondJSONError(w, "resetCode is required", http.StatusBadRequest)
		return
	}

	if err := h.auth.VerifyResetCode(r.Context(), req.ResetCode); err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Code verified"})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.NewPassword == "" {
		respondJSONError(w, "email and newPassword are required", http.StatusBadRequest)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// respondJSONError writes a JSON error response
func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
