package server

import (
	"net/http"
	"strings"
	"time"

	budgetdomain "github.com/agencyhq/opscore/internal/budget/domain"
	"github.com/gin-gonic/gin"
)

type createAllocationRequest struct {
	ClientID       string  `json:"client_id"`
	ServiceID      string  `json:"service_id"`
	MonthlyBudget  float64 `json:"monthly_budget"`
	ActualSpending float64 `json:"actual_spending"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Notes          string  `json:"notes"`
}

func (s *Server) CreateAllocation(c *gin.Context) {
	var req createAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.budgetSvc.Create(c.Request.Context(), budgetdomain.CreateAllocationRequest{
		ClientID:       strings.TrimSpace(req.ClientID),
		ServiceID:      strings.TrimSpace(req.ServiceID),
		MonthlyBudget:  req.MonthlyBudget,
		ActualSpending: req.ActualSpending,
		StartDate:      startDate,
		EndDate:        endDate,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAllocations(c *gin.Context) {
	var query struct {
		ClientID  string `form:"client_id"`
		ServiceID string `form:"service_id"`
		LiveAt    string `form:"live_at"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var liveAt *time.Time
	if strings.TrimSpace(query.LiveAt) != "" {
		parsed, err := parseDate(query.LiveAt)
		if err != nil {
			AbortWithError(c, newValidationError("live_at", "invalid_live_at", "invalid live_at"))
			return
		}
		liveAt = &parsed
	}

	resp, err := s.budgetSvc.List(c.Request.Context(), budgetdomain.ListAllocationFilter{
		ClientID:  strings.TrimSpace(query.ClientID),
		ServiceID: strings.TrimSpace(query.ServiceID),
		LiveAt:    liveAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAllocationByID(c *gin.Context) {
	resp, err := s.budgetSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateAllocationRequest struct {
	MonthlyBudget  *float64 `json:"monthly_budget"`
	ActualSpending *float64 `json:"actual_spending"`
	EndDate        *string  `json:"end_date"`
	Notes          *string  `json:"notes"`
}

func (s *Server) UpdateAllocation(c *gin.Context) {
	var req updateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		endDate = &parsed
	}

	resp, err := s.budgetSvc.Update(c.Request.Context(), budgetdomain.UpdateAllocationRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		MonthlyBudget:  req.MonthlyBudget,
		ActualSpending: req.ActualSpending,
		EndDate:        endDate,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveAllocation(c *gin.Context) {
	if err := s.budgetSvc.Archive(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"archived": true}})
}

// parseDate accepts either a date-only value or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
