// internal/api/responses/responses.go
package responses

import (
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Error responde com {"detail": msg}. Detalhes opcionais são anexados à
// mensagem, separados por ": ".
func Error(c *gin.Context, status int, msg string, details ...string) {
	detail := msg
	if len(details) > 0 {
		detail = msg + ": " + strings.Join(details, "; ")
	}
	if status >= 500 {
		log.WithFields(log.Fields{
			"path":   c.Request.URL.Path,
			"status": status,
		}).Error(detail)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
