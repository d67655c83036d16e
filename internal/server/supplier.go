package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
)

type createSupplierRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type updateSupplierRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// @Summary      Create Supplier
// @Description  Register a new equipment supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body createSupplierRequest true "Create Supplier Request"
// @Success      200  {object}  supplierdomain.Supplier
// @Router       /suppliers [post]
func (s *Server) CreateSupplier(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.supplierSvc.Create(c.Request.Context(), supplierdomain.CreateSupplierRequest{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Suppliers
// @Tags         suppliers
// @Produce      json
// @Success      200  {object}  []supplierdomain.Supplier
// @Router       /suppliers [get]
func (s *Server) ListSuppliers(c *gin.Context) {
	resp, err := s.supplierSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Supplier
// @Tags         suppliers
// @Produce      json
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  supplierdomain.Supplier
// @Router       /suppliers/{id} [get]
func (s *Server) GetSupplierByID(c *gin.Context) {
	resp, err := s.supplierSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id      path  string                true  "Supplier ID"
// @Param        request body  updateSupplierRequest true  "Update Supplier Request"
// @Success      200  {object}  supplierdomain.Supplier
// @Router       /suppliers/{id} [put]
func (s *Server) UpdateSupplier(c *gin.Context) {
	var req updateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.supplierSvc.Update(c.Request.Context(), supplierdomain.UpdateSupplierRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Supplier
// @Tags         suppliers
// @Param        id   path      string  true  "Supplier ID"
// @Success      200
// @Router       /suppliers/{id} [delete]
func (s *Server) DeleteSupplier(c *gin.Context) {
	if err := s.supplierSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
