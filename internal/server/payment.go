package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Record Payment
// @Description  Settle the outstanding obligation and open the next cycle
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  ledgerdomain.PaymentRecord
// @Router       /v1/customers/{id}/payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.ledgerSvc.RecordPayment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Advance Cycle
// @Description  Open the next obligation for a settled customer
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  ledgerdomain.PaymentRecord
// @Router       /v1/customers/{id}/cycle [post]
func (s *Server) AdvanceCycle(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.ledgerSvc.AdvanceCycle(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
