package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

type createTechnicianRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url"`
}

type updateTechnicianRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	PhotoURL *string `json:"photo_url"`
}

// @Summary      Create Technician
// @Tags         technicians
// @Accept       json
// @Produce      json
// @Param        request body createTechnicianRequest true "Create Technician Request"
// @Success      200  {object}  techniciandomain.Technician
// @Router       /technicians [post]
func (s *Server) CreateTechnician(c *gin.Context) {
	var req createTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.technicianSvc.Create(c.Request.Context(), techniciandomain.CreateTechnicianRequest{
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		PhotoURL: strings.TrimSpace(req.PhotoURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Technicians
// @Tags         technicians
// @Produce      json
// @Success      200  {object}  []techniciandomain.Technician
// @Router       /technicians [get]
func (s *Server) ListTechnicians(c *gin.Context) {
	resp, err := s.technicianSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Technician
// @Tags         technicians
// @Produce      json
// @Param        id   path      string  true  "Technician ID"
// @Success      200  {object}  techniciandomain.Technician
// @Router       /technicians/{id} [get]
func (s *Server) GetTechnicianByID(c *gin.Context) {
	resp, err := s.technicianSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Technician
// @Tags         technicians
// @Accept       json
// @Produce      json
// @Param        id      path  string                  true  "Technician ID"
// @Param        request body  updateTechnicianRequest true  "Update Technician Request"
// @Success      200  {object}  techniciandomain.Technician
// @Router       /technicians/{id} [put]
func (s *Server) UpdateTechnician(c *gin.Context) {
	var req updateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.technicianSvc.Update(c.Request.Context(), techniciandomain.UpdateTechnicianRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Technician
// @Tags         technicians
// @Param        id   path      string  true  "Technician ID"
// @Success      200
// @Router       /technicians/{id} [delete]
func (s *Server) DeleteTechnician(c *gin.Context) {
	if err := s.technicianSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
