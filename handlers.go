package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := a.Register(req.Name, req.Email, req.Password)
	if err != nil {
		var policyErr *PolicyError
		switch {
		case errors.Is(err, ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "Invalid request")
		case errors.Is(err, ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "User with this email already exists")
		case errors.As(err, &policyErr):
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": policyErr.Reasons})
		default:
			a.Log.Error("register failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"userName": user.Email,
		"email":    user.Email,
		"name":     user.Name,
	})
}

func (a *App) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	signed, err := a.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "Invalid request")
		case errors.Is(err, ErrUnauthorized):
			writeAuthError(w, "Invalid Email or Password")
		default:
			a.Log.Error("login failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   signed,
	})
}

// HandleTokenValidate lets resource servers check an access token.
// GET /api/auth/validate with Authorization: Bearer <token> or ?token=...
func (a *App) HandleTokenValidate(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		tokenStr = bearerToken(r.Header.Get("Authorization"))
	}

	if tokenStr == "" {
		writeError(w, http.StatusBadRequest, "Token is required")
		return
	}

	claims, err := a.Validator.Validate(tokenStr)
	if err != nil {
		// expired/tampered/malformed are distinguished here only
		a.Log.Debug("token rejected", zap.Error(err))
		writeAuthError(w, "Token is invalid or expired")
		return
	}

	resp := map[string]any{
		"success": true,
		"userId":  claims.Subject,
		"email":   claims.Email,
		"name":    claims.Name,
		"role":    claims.Role,
		"roles":   claims.Roles,
	}
	if claims.ExpiresAt != nil {
		resp["exp"] = claims.ExpiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}
