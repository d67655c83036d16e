package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
)

type createClientRequest struct {
	Name                string    `json:"name"`
	Address             string    `json:"address"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email"`
	InstalledAt         time.Time `json:"installed_at"`
	EquipmentDescriptor string    `json:"equipment_descriptor"`
	Notes               string    `json:"notes"`
	SuppliedMaterials   string    `json:"supplied_materials"`
	SupplierID          string    `json:"supplier_id"`
}

type updateClientRequest struct {
	Name                *string    `json:"name"`
	Address             *string    `json:"address"`
	Phone               *string    `json:"phone"`
	Email               *string    `json:"email"`
	InstalledAt         *time.Time `json:"installed_at"`
	EquipmentDescriptor *string    `json:"equipment_descriptor"`
	Notes               *string    `json:"notes"`
	SuppliedMaterials   *string    `json:"supplied_materials"`
	SupplierID          *string    `json:"supplier_id"`
}

// @Summary      Create Client
// @Description  Register a client and their solar installation
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body createClientRequest true "Create Client Request"
// @Success      200  {object}  clientdomain.Client
// @Router       /clients [post]
func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		Name:                strings.TrimSpace(req.Name),
		Address:             strings.TrimSpace(req.Address),
		Phone:               strings.TrimSpace(req.Phone),
		Email:               strings.TrimSpace(req.Email),
		InstalledAt:         req.InstalledAt,
		EquipmentDescriptor: strings.TrimSpace(req.EquipmentDescriptor),
		Notes:               strings.TrimSpace(req.Notes),
		SuppliedMaterials:   strings.TrimSpace(req.SuppliedMaterials),
		SupplierID:          strings.TrimSpace(req.SupplierID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Clients
// @Tags         clients
// @Produce      json
// @Param        search  query  string  false  "Name search"
// @Success      200  {object}  []clientdomain.Client
// @Router       /clients [get]
func (s *Server) ListClients(c *gin.Context) {
	resp, err := s.clientSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Client
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  clientdomain.Client
// @Router       /clients/{id} [get]
func (s *Server) GetClientByID(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Preview Intervention Price
// @Description  Project the tariff an intervention of the given kind would cost for this client
// @Tags         clients
// @Produce      json
// @Param        id    path   string  true   "Client ID"
// @Param        kind  query  string  false  "Intervention kind (defaults to maintenance)"
// @Success      200  {object}  clientdomain.PricePreview
// @Router       /clients/{id}/price-preview [get]
func (s *Server) PreviewClientPrice(c *gin.Context) {
	resp, err := s.clientSvc.PreviewPrice(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Query("kind")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path  string              true  "Client ID"
// @Param        request body  updateClientRequest true  "Update Client Request"
// @Success      200  {object}  clientdomain.Client
// @Router       /clients/{id} [put]
func (s *Server) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Update(c.Request.Context(), clientdomain.UpdateClientRequest{
		ID:                  strings.TrimSpace(c.Param("id")),
		Name:                req.Name,
		Address:             req.Address,
		Phone:               req.Phone,
		Email:               req.Email,
		InstalledAt:         req.InstalledAt,
		EquipmentDescriptor: req.EquipmentDescriptor,
		Notes:               req.Notes,
		SuppliedMaterials:   req.SuppliedMaterials,
		SupplierID:          req.SupplierID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Client
// @Tags         clients
// @Param        id   path      string  true  "Client ID"
// @Success      200
// @Router       /clients/{id} [delete]
func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
