package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunEvaluator triggers one evaluation pass synchronously. The run keeps its
// own deadline, so a slow scan returns a partial summary rather than hanging
// the caller.
func (s *Server) RunEvaluator(c *gin.Context) {
	summary, err := s.evaluator.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"skipped":               summary.Skipped,
		"checked":               summary.Checked,
		"alerts":                summary.Alerts,
		"notifications_created": summary.NotificationsCreated,
		"details":               summary.Details,
		"failed":                summary.Failed,
	})
}
