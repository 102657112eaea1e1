package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadToken = errors.New("invalid token")

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

type Claims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// short-lived access token (24h, matching the browser client's session)
func MakeToken(uid string, role Role, secret string) (string, error) {
	c := Claims{
		UserID: uid,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	}, jwt.WithLeeway(5*time.Second))
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	if _, err := ParseRole(string(c.Role)); err != nil {
		return nil, ErrBadToken
	}
	return c, nil
}

const (
	ctxActorID   = "actorID"
	ctxActorRole = "actorRole"
)

// AuthMiddleware resolves the bearer token into the acting user's identity
// and role. Role strings are validated here, once, so downstream code can
// switch on Role exhaustively.
func (a *App) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": "missing or malformed authorization"})
			return
		}
		claims, err := ParseToken(parts[1], a.Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": "invalid token"})
			return
		}
		c.Set(ctxActorID, claims.UserID)
		c.Set(ctxActorRole, claims.Role)
		c.Next()
	}
}

func RequireRole(want Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxActorRole)
		switch role {
		case want:
			c.Next()
		case RolePatient, RoleDoctor, RoleAdmin:
			c.AbortWithStatusJSON(http.StatusForbidden,
				gin.H{"success": false, "message": "forbidden"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": "unauthenticated"})
		}
	}
}

func actorID(c *gin.Context) string {
	id, _ := c.Get(ctxActorID)
	s, _ := id.(string)
	return s
}
