package auth

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the Firebase ID token and attaches it to the gin
// context for the services to consume.
func AuthMiddleware(firebaseApp *firebase.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}
		idToken := strings.TrimPrefix(authHeader, "Bearer ")

		ctx := context.Background()
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initialize Firebase Auth"})
			c.Abort()
			return
		}

		token, err := authClient.VerifyIDToken(ctx, idToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ID token"})
			c.Abort()
			return
		}

		// Attach token to the context
		c.Set("token", token)

		c.Next()
	}
}

// UID returns the authenticated user id from the gin context.
func UID(c *gin.Context) string {
	token := c.MustGet("token").(*fbauth.Token)
	return token.UID
}

// IsPlatformAdmin reports whether the token carries the admin custom claim.
func IsPlatformAdmin(c *gin.Context) bool {
	token := c.MustGet("token").(*fbauth.Token)
	admin, ok := token.Claims["admin"].(bool)
	return ok && admin
}
