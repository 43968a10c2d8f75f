package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"study-plan/internal/config"
)

const ContextUserID = "user_id"

type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(cfg config.AuthConfig) *JWT {
	return &JWT{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: time.Now}
}

// Issue signs a token for uid valid for the configured TTL.
func (j *JWT) Issue(uid, name string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  uid,
		"name": name,
		"exp":  j.now().Add(j.ttl).Unix(),
	}).SignedString(j.secret)
}

// Auth checks the bearer token and stores its uid under ContextUserID.
func (j *JWT) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token, err := jwt.Parse(auth[7:], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return j.secret, nil
		}, jwt.WithTimeFunc(j.now))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		uid, _ := claims["uid"].(string)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUserID, uid)

		// renew when less than a day is left
		if exp, ok := claims["exp"].(float64); ok {
			if time.Unix(int64(exp), 0).Sub(j.now()) < 24*time.Hour {
				name, _ := claims["name"].(string)
				if newToken, err := j.Issue(uid, name); err == nil {
					c.Header("X-New-Token", newToken)
				}
			}
		}

		c.Next()
	}
}

// Owner rejects requests whose token subject is not the :id path parameter.
func Owner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserID) != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
