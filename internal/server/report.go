package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
)

type generateReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// @Summary      Generate Report
// @Description  Compute monthly statistics and generate the narrative analysis
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body generateReportRequest true "Generate Report Request"
// @Success      200  {object}  reportdomain.Report
// @Router       /reports [post]
func (s *Server) GenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reportSvc.Generate(c.Request.Context(), reportdomain.GenerateRequest{
		Month: req.Month,
		Year:  req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Reports
// @Tags         reports
// @Produce      json
// @Param        page       query  int  false  "Page"
// @Param        page_size  query  int  false  "Page Size"
// @Success      200  {object}  reportdomain.ListResponse
// @Router       /reports [get]
func (s *Server) ListReports(c *gin.Context) {
	var query struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reportSvc.List(c.Request.Context(), reportdomain.ListRequest{
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Report
// @Tags         reports
// @Param        id   path      string  true  "Report ID"
// @Success      200
// @Router       /reports/{id} [delete]
func (s *Server) DeleteReport(c *gin.Context) {
	if err := s.reportSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Analyst Health
// @Description  Check whether the text-generation backend is reachable
// @Tags         reports
// @Produce      json
// @Success      200  {object}  reportdomain.AnalystStatus
// @Router       /reports/analyst/health [get]
func (s *Server) AnalystHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.reportSvc.AnalystStatus(c.Request.Context())})
}

// @Summary      Get Report
// @Tags         reports
// @Produce      json
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  reportdomain.Report
// @Router       /reports/{id} [get]
func (s *Server) GetReportByID(c *gin.Context) {
	resp, err := s.reportSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
