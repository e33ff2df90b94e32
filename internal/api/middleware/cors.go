package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func ConfigCORS(allowedDomains []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedDomains) == 0 || containsWildcard(allowedDomains) {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = allowedDomains
	}

	return cors.New(conf)
}

func containsWildcard(domains []string) bool {
	for _, d := range domains {
		if d == "*" {
			return true
		}
	}
	return false
}
