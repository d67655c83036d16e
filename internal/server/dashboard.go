package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// @Summary      Admin Dashboard
// @Description  Company-wide activity and revenue aggregates
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  domain.AdminOverview
// @Router       /dashboards/admin [get]
func (s *Server) AdminDashboard(c *gin.Context) {
	resp, err := s.dashboardSvc.AdminOverview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Technician Dashboard
// @Description  One technician's assigned workload, upcoming and overdue interventions
// @Tags         dashboards
// @Produce      json
// @Param        id   path      string  true  "Technician ID"
// @Success      200  {object}  domain.TechnicianOverview
// @Router       /dashboards/technicians/{id} [get]
func (s *Server) TechnicianDashboard(c *gin.Context) {
	resp, err := s.dashboardSvc.TechnicianOverview(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
