package httpapi

import (
	"net/http"
	"time"

	"farm-platform/internal/infrastructure/db"

	"github.com/gin-gonic/gin"
)

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "pong",
		"timestamp": s.now().Unix(),
		"status":    "alive",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	dbStatus := "ok"
	if s.db != nil {
		if err := db.Ping(c.Request.Context(), s.db); err != nil {
			dbStatus = "error: " + err.Error()
		}
	} else {
		dbStatus = "using_memory"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"health":  "ok",
		"db":      dbStatus,
		"time":    s.now().Format(time.RFC3339),
	})
}
