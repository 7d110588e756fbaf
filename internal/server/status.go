package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type setServiceStatusRequest struct {
	Active *bool `json:"active"`
}

// @Summary      Set Service Status
// @Description  Switch a customer's service on or off
// @Tags         status
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Customer ID"
// @Param        request  body  setServiceStatusRequest  true  "Set Status Request"
// @Success      200  {object}  map[string]bool
// @Router       /v1/customers/{id}/status [put]
func (s *Server) SetServiceStatus(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req setServiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.statusSvc.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"customer_id": id.String(), "active": *req.Active}})
}

// @Summary      Get Service Status
// @Description  Read a customer's service switch, default on
// @Tags         status
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  map[string]bool
// @Router       /v1/customers/{id}/status [get]
func (s *Server) GetServiceStatus(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	active, err := s.statusSvc.IsActive(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"customer_id": id.String(), "active": active}})
}
