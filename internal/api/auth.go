package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"counterpos/m/domain"
	"counterpos/m/internal/config"
)

type ctxKey string

const (
	ctxSessionID ctxKey = "sessionID"
	ctxRole      ctxKey = "role"
	ctxExpiresAt ctxKey = "expiresAt"
)

// Authentication helpers

type authClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type authResponse struct {
	Token     string      `json:"token"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// generateToken issues a session token. The JWT id doubles as the session id
// that keys terminal state and revocation.
func (h *Handler) generateToken(role domain.Role, subject string) (authResponse, error) {
	now := h.now()
	expires := now.Add(h.cfg.SessionTTL)
	claims := authClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Secret))
	if err != nil {
		return authResponse{}, err
	}
	return authResponse{Token: signed, Role: role, ExpiresAt: expires.UTC()}, nil
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok || claims.ID == "" || claims.ExpiresAt == nil {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		revoked, err := h.terminals.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			config.LogError(h.logger, moduleName, "authMiddleware", "revocation check failed", claims.ID, err)
			respondError(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		if revoked {
			respondError(w, http.StatusUnauthorized, domain.ErrSessionRevoked.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ctxSessionID, claims.ID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		ctx = context.WithValue(ctx, ctxExpiresAt, claims.ExpiresAt.Time)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole admits sessions whose role allows want. Admin sessions pass
// operator gates.
func (h *Handler) requireRole(want domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(ctxRole).(domain.Role)
			if !ok {
				respondError(w, http.StatusUnauthorized, "missing role")
				return
			}
			if !role.Allows(want) {
				respondError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(ctxSessionID).(string)
	return sid
}

// Auth Handlers

type unlockRequest struct {
	Password string `json:"password" validate:"required"`
}

// unlock opens the billing counter with the shared operator password.
func (h *Handler) unlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !checkSecret(h.cfg.OperatorPasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
		return
	}
	resp, err := h.generateToken(domain.RoleOperator, "counter")
	if err != nil {
		h.respondDomainError(w, "unlock", nil, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	// The hash is compared even when the username is wrong.
	validUser := h.cfg.AdminUsername != "" && strings.TrimSpace(req.Username) == h.cfg.AdminUsername
	validPassword := checkSecret(h.cfg.AdminPasswordHash, req.Password)
	if !validUser || !validPassword {
		respondError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
		return
	}
	resp, err := h.generateToken(domain.RoleAdmin, h.cfg.AdminUsername)
	if err != nil {
		h.respondDomainError(w, "adminLogin", nil, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// logout revokes the session until its token would have expired and drops
// its terminal state.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	until, _ := r.Context().Value(ctxExpiresAt).(time.Time)
	if err := h.terminals.Revoke(r.Context(), sid, until); err != nil {
		h.respondDomainError(w, "logout", sid, err)
		return
	}
	if err := h.terminals.Drop(r.Context(), sid); err != nil {
		config.LogError(h.logger, moduleName, "logout", "unable to drop terminal state", sid, err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func checkSecret(hash, candidate string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
