package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
)

type createInterventionRequest struct {
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	ClientID      string    `json:"client_id"`
	TechnicianID  string    `json:"technician_id"`
	FaultObserved string    `json:"fault_observed"`
	PartsReplaced string    `json:"parts_replaced"`
	Notes         string    `json:"notes"`
	Price         int64     `json:"price"`
}

type updateInterventionRequest struct {
	Version       int64      `json:"version"`
	Status        *string    `json:"status"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	FaultObserved *string    `json:"fault_observed"`
	PartsReplaced *string    `json:"parts_replaced"`
	Notes         *string    `json:"notes"`
	Price         *int64     `json:"price"`
	ClientID      *string    `json:"client_id"`
	TechnicianID  *string    `json:"technician_id"`
}

// @Summary      Create Intervention
// @Description  Open an intervention for a client; a zero price is derived from the equipment capacity
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Param        request body createInterventionRequest true "Create Intervention Request"
// @Success      200  {object}  interventiondomain.Intervention
// @Router       /interventions [post]
func (s *Server) CreateIntervention(c *gin.Context) {
	var req createInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.interventionSvc.Create(c.Request.Context(), interventiondomain.CreateInterventionRequest{
		Kind:          interventiondomain.Kind(strings.TrimSpace(req.Kind)),
		Status:        interventiondomain.Status(strings.TrimSpace(req.Status)),
		ScheduledAt:   req.ScheduledAt,
		ClientID:      strings.TrimSpace(req.ClientID),
		TechnicianID:  strings.TrimSpace(req.TechnicianID),
		FaultObserved: req.FaultObserved,
		PartsReplaced: req.PartsReplaced,
		Notes:         req.Notes,
		Price:         req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Interventions
// @Tags         interventions
// @Produce      json
// @Param        kind       query  string  false  "Filter by kind"
// @Param        status     query  string  false  "Filter by status"
// @Param        search     query  string  false  "Search client, technician or supplier name"
// @Param        from       query  string  false  "Scheduled from (RFC 3339)"
// @Param        to         query  string  false  "Scheduled to (RFC 3339)"
// @Param        page       query  int     false  "Page"
// @Param        page_size  query  int     false  "Page Size"
// @Success      200  {object}  interventiondomain.ListInterventionsResponse
// @Router       /interventions [get]
func (s *Server) ListInterventions(c *gin.Context) {
	var query struct {
		Kind     string     `form:"kind"`
		Status   string     `form:"status"`
		Search   string     `form:"search"`
		From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
		To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
		Page     int        `form:"page"`
		PageSize int        `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.interventionSvc.List(c.Request.Context(), interventiondomain.ListInterventionsRequest{
		Kind:     interventiondomain.Kind(strings.TrimSpace(query.Kind)),
		Status:   interventiondomain.Status(strings.TrimSpace(query.Status)),
		Search:   query.Search,
		From:     query.From,
		To:       query.To,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Intervention
// @Description  Returns the intervention with its cumulative worked duration
// @Tags         interventions
// @Produce      json
// @Param        id   path      string  true  "Intervention ID"
// @Success      200  {object}  interventiondomain.InterventionDetail
// @Router       /interventions/{id} [get]
func (s *Server) GetInterventionByID(c *gin.Context) {
	resp, err := s.interventionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Intervention
// @Description  Applies field changes and runs the status transition bookkeeping
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Param        id      path  string                    true  "Intervention ID"
// @Param        request body  updateInterventionRequest true  "Update Intervention Request"
// @Success      200  {object}  interventiondomain.Intervention
// @Router       /interventions/{id} [put]
func (s *Server) UpdateIntervention(c *gin.Context) {
	var req updateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var status *interventiondomain.Status
	if req.Status != nil {
		st := interventiondomain.Status(strings.TrimSpace(*req.Status))
		status = &st
	}

	resp, err := s.interventionSvc.Update(c.Request.Context(), interventiondomain.UpdateInterventionRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		Version:       req.Version,
		Status:        status,
		ScheduledAt:   req.ScheduledAt,
		FaultObserved: req.FaultObserved,
		PartsReplaced: req.PartsReplaced,
		Notes:         req.Notes,
		Price:         req.Price,
		ClientID:      req.ClientID,
		TechnicianID:  req.TechnicianID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Intervention
// @Tags         interventions
// @Param        id   path      string  true  "Intervention ID"
// @Success      200
// @Router       /interventions/{id} [delete]
func (s *Server) DeleteIntervention(c *gin.Context) {
	if err := s.interventionSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
