package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/core"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/models"
)

const actorKey = "actor"

var validRoles = map[models.Role]bool{
	models.RoleClient:       true,
	models.RoleCollaborator: true,
	models.RoleManager:      true,
	models.RoleAdmin:        true,
}

// Actor resolves the caller's identity. Identity verification lives with the
// upstream identity provider; when an AUTH_SECRET is configured the id and
// role are read from signed token claims, otherwise (dev mode, trusted
// gateway) from plain headers.
func Actor(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id, role string

		if secret != "" {
			auth := c.GetHeader("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				abortUnauthorized(c, "missing bearer token")
				return
			}
			token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				abortUnauthorized(c, "invalid token")
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				abortUnauthorized(c, "invalid claims")
				return
			}
			id, _ = claims["sub"].(string)
			role, _ = claims["role"].(string)
		} else {
			id = c.GetHeader("X-Actor-Id")
			role = c.GetHeader("X-Actor-Role")
		}

		if id == "" || !validRoles[models.Role(role)] {
			abortUnauthorized(c, "actor id and role required")
			return
		}

		c.Set(actorKey, core.Actor{ID: id, Role: models.Role(role)})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// ActorFrom returns the actor placed on the context by Actor.
func ActorFrom(c *gin.Context) core.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(core.Actor)
	return actor
}
