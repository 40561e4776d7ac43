package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyAuthMiddleware validates the X-API-Key header and sets the key
// context. Key lookups are by hash so the plaintext never hits the database.
func APIKeyAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := repo.GetByHash(c.Request.Context(), HashKey(apiKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		_ = repo.TouchLastUsed(c.Request.Context(), key.ID)

		c.Set("webhookKeyID", key.ID)
		c.Set("webhookKeyName", key.Name)
		c.Next()
	}
}
