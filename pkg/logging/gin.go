package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GinMiddleware logs one line per request.
func GinMiddleware() gin.HandlerFunc {
	log := For("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Microsecond),
		}
		if uid := c.GetString("userID"); uid != "" {
			fields["user"] = uid
		}
		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
