package server

import (
	"net/http"
	"strings"

	dispatchdomain "github.com/agencyhq/opscore/internal/dispatch/domain"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListNotifications(c *gin.Context) {
	var query struct {
		UserID string `form:"user_id"`
		Unread string `form:"unread"`
		Type   string `form:"type"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	unread, err := parseOptionalBool(query.Unread)
	if err != nil {
		AbortWithError(c, newValidationError("unread", "invalid_unread", "invalid unread"))
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.ListNotificationFilter{
		UserID: strings.TrimSpace(query.UserID),
		Unread: unread,
		Type:   notificationdomain.Type(strings.TrimSpace(query.Type)),
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	if err := s.notificationSvc.MarkRead(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"read": true}})
}

type sendNotificationRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	HTML    string `json:"html"`
	Type    string `json:"type"`
}

func (s *Server) SendNotification(c *gin.Context) {
	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dispatchSvc.Send(c.Request.Context(), dispatchdomain.SendRequest{
		To:      req.To,
		Subject: req.Subject,
		Message: req.Message,
		HTML:    req.HTML,
		Type:    dispatchdomain.Channel(strings.TrimSpace(req.Type)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
