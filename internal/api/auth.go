package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tiendaonline/backend/internal/domain"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// authClaims — полезная нагрузка JWT: идентификатор пользователя и роль.
type authClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"rol"`
	jwt.RegisteredClaims
}

func (a *API) generateToken(user domain.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.Email,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			a.respondError(w, http.StatusUnauthorized, "Token de autorización requerido", errors.New("missing bearer token"))
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])

		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			a.respondError(w, http.StatusUnauthorized, "Token inválido o expirado", errors.New("invalid token"))
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			a.respondError(w, http.StatusUnauthorized, "Token inválido o expirado", errors.New("invalid token claims"))
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxUserID).(int64)
	return id
}

func roleFrom(r *http.Request) string {
	role, _ := r.Context().Value(ctxRole).(string)
	return role
}

// requireRole отвечает 403 и возвращает false, если роль запроса не входит в
// список разрешённых.
func (a *API) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	current := roleFrom(r)
	if current == "" {
		a.respondError(w, http.StatusUnauthorized, "Token de autorización requerido", errors.New("missing role"))
		return false
	}
	for _, role := range allowed {
		if current == role {
			return true
		}
	}
	a.respondError(w, http.StatusForbidden, "No tiene permisos para este recurso", errors.New("insufficient permissions"))
	return false
}
