package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/research-links/pkg/config"
	"go.uber.org/zap"
)

const adminSubject = "admin"

type AuthHandler struct {
	jwtSecret    []byte
	ttl          time.Duration
	isProduction bool
	logger       *zap.Logger
	now          func() time.Time
}

func NewAuthHandler(cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtSecret:    cfg.SessionKey(),
		ttl:          cfg.SessionTTL,
		isProduction: cfg.IsProduction(),
		logger:       logger,
		now:          time.Now,
	}
}

// Login runs behind AuthMiddleware. It confirms the caller is an admin and
// issues a session cookie so the dashboard can drop the key header.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	expirationTime := h.now().Add(h.ttl)
	claims := &jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(h.now()),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokenString,
		Expires:  expirationTime,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("admin session issued", zap.String("request_id", RequestID(r.Context())))
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  h.now().Add(-1 * time.Hour),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
