package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	importerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/importer/domain"
)

type importCustomersRequest struct {
	Customers []createCustomerRequest `json:"customers"`
}

// @Summary      Import Customers
// @Description  Bulk register customers; the batch commits whole or not at all
// @Tags         import
// @Accept       json
// @Produce      json
// @Param        request body importCustomersRequest true "Import Request"
// @Success      200  {object}  importerdomain.ImportResult
// @Router       /v1/import/customers [post]
func (s *Server) ImportCustomers(c *gin.Context) {
	if !s.importLimiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{
			"code":    "rate_limited",
			"message": "too many import requests",
		}})
		return
	}

	var req importCustomersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows := make([]customerdomain.RegisterRequest, 0, len(req.Customers))
	for i, row := range req.Customers {
		contractDate, err := time.Parse(dateLayout, strings.TrimSpace(row.ContractDate))
		if err != nil {
			result := importerdomain.ImportResult{Errors: []importerdomain.RowError{{
				Index: i,
				Field: "contract_date",
				Cause: "invalid_contract_date",
			}}}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result})
			return
		}
		var expirationDate time.Time
		if raw := strings.TrimSpace(row.ExpirationDate); raw != "" {
			expirationDate, err = time.Parse(dateLayout, raw)
			if err != nil {
				result := importerdomain.ImportResult{Errors: []importerdomain.RowError{{
					Index: i,
					Field: "expiration_date",
					Cause: "invalid_expiration_date",
				}}}
				c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result})
				return
			}
		}
		rows = append(rows, customerdomain.RegisterRequest{
			Name:           strings.TrimSpace(row.Name),
			Address:        strings.TrimSpace(row.Address),
			Phone:          strings.TrimSpace(row.Phone),
			Mbps:           row.Mbps,
			State:          customerdomain.CustomerState(strings.TrimSpace(row.State)),
			ContractDate:   contractDate,
			PaymentDay:     row.PaymentDay,
			PaymentType:    strings.TrimSpace(row.PaymentType),
			Bank:           strings.TrimSpace(row.Bank),
			IBAN:           strings.TrimSpace(row.IBAN),
			ExpirationDate: expirationDate,
			MonthlyValue:   row.MonthlyValue,
		})
	}

	result, err := s.importerSvc.Import(c.Request.Context(), rows)
	if err != nil {
		if errors.Is(err, importerdomain.ErrBatchRejected) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
