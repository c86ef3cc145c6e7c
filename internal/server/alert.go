package server

import (
	"net/http"
	"strings"

	alertdomain "github.com/agencyhq/opscore/internal/alert/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListAlerts(c *gin.Context) {
	var query struct {
		ClientID  string `form:"client_id"`
		ServiceID string `form:"service_id"`
		AlertType string `form:"alert_type"`
		Active    string `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.alertSvc.List(c.Request.Context(), alertdomain.ListAlertFilter{
		ClientID:  strings.TrimSpace(query.ClientID),
		ServiceID: strings.TrimSpace(query.ServiceID),
		AlertType: alertdomain.Level(strings.TrimSpace(query.AlertType)),
		Active:    active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAlertByID(c *gin.Context) {
	resp, err := s.alertSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DismissAlert(c *gin.Context) {
	if err := s.alertSvc.Dismiss(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"dismissed": true}})
}
