package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/internal/services"
	"github.com/unisoruyor/apiserver/types"
)

const (
	defaultTokenTTL = 24 * time.Hour
	tokenType       = "bearer"

	msgLoginRequired   = "Giriş yapmanız gerekiyor"
	msgInvalidSession  = "Oturum geçersiz, lütfen tekrar giriş yapın"
	msgTooManyAttempts = "Çok fazla giriş denemesi. Lütfen daha sonra tekrar deneyin."
)

// Accounts is the user service surface used by the auth endpoints.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (types.User, error)
	Authenticate(ctx context.Context, in services.LoginInput) (types.User, error)
	Resolve(ctx context.Context, id int) (types.User, error)
}

// AttemptLimiter throttles login attempts per client.
type AttemptLimiter interface {
	Allow(ctx context.Context, id string) (bool, time.Duration, error)
	Reset(ctx context.Context, id string) error
}

// AuthHandler provides JWT authentication endpoints.
type AuthHandler struct {
	accounts Accounts
	limiter  AttemptLimiter
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthHandler constructs an AuthHandler. limiter may be nil.
func NewAuthHandler(accounts Accounts, limiter AttemptLimiter, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthHandler{
		accounts: accounts,
		limiter:  limiter,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth resolves the bearer token to a user and stores it in the
// request context. Suspended users are rejected here.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgLoginRequired)
			return
		}

		subject, err := parseTokenSubject(tokenString, h.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgInvalidSession)
			return
		}
		userID, err := strconv.Atoi(subject)
		if err != nil || userID < 1 {
			writeError(w, http.StatusUnauthorized, msgInvalidSession)
			return
		}

		user, err := h.accounts.Resolve(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		ctx := observability.WithUserID(withSession(r.Context(), user), user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireSession(w, r)
		if !ok {
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "Admin yetkisi gerekli")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Register creates a new account and returns a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeToken(w, r, http.StatusCreated, user)
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	client := clientIP(r)
	if h.limiter != nil {
		allowed, retryAfter, err := h.limiter.Allow(r.Context(), client)
		if err != nil {
			slog.WarnContext(r.Context(), "login limiter unavailable", "error", err)
		}
		if !allowed {
			observability.RateLimitedTotal.WithLabelValues("login").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			writeError(w, http.StatusTooManyRequests, msgTooManyAttempts)
			return
		}
	}

	user, err := h.accounts.Authenticate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if h.limiter != nil {
		if err := h.limiter.Reset(r.Context(), client); err != nil {
			slog.WarnContext(r.Context(), "failed to reset login limiter", "error", err)
		}
	}
	h.writeToken(w, r, http.StatusOK, user)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, r *http.Request, status int, user types.User) {
	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, AuthResponse{AccessToken: token, TokenType: tokenType, User: user})
}

type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        types.User `json:"user"`
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
