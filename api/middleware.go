package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

// ContextUserIDKey is the gin context key for the authenticated user ID.
const ContextUserIDKey = "userID"

// RequestLogger logs every request with its status and latency.
func RequestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("[http] %s %s %d %dms %s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start).Milliseconds(), c.ClientIP())
	}
}

// CORS allows the dashboard front-end origins.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// AuthRequired validates Supabase access tokens signed with secret. An
// empty secret disables the check.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			Abort(c, http.StatusUnauthorized, CodeUnauthorized, "missing token")
			return
		}

		claims, err := parseAccessClaims(rawToken, secret)
		if err != nil {
			Abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid token")
			return
		}

		sub, _ := claims.GetSubject()
		c.Set(ContextUserIDKey, sub)
		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return rawToken, rawToken != ""
}

func parseAccessClaims(rawToken, secret string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token")
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
