package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// @Summary      Overdue Report
// @Description  Unpaid obligations past their due date
// @Tags         reports
// @Produce      json
// @Success      200  {object}  []ledgerdomain.OverduePayment
// @Router       /v1/reports/overdue [get]
func (s *Server) ReportOverdue(c *gin.Context) {
	resp, err := s.ledgerSvc.ListOverdue(c.Request.Context(), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Due Window Report
// @Description  Obligations falling due inside a date window
// @Tags         reports
// @Produce      json
// @Param        from  query  string  true  "Window start YYYY-MM-DD"
// @Param        to    query  string  true  "Window end YYYY-MM-DD"
// @Success      200  {object}  []ledgerdomain.PaymentRecord
// @Router       /v1/reports/due [get]
func (s *Server) ReportDueInWindow(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from date"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to date"))
		return
	}

	now := s.clock.Now()
	start := now
	if from != nil {
		start = *from
	}
	end := now.AddDate(0, 0, 7)
	if to != nil {
		end = *to
	}

	resp, err := s.ledgerSvc.ListDueInWindow(c.Request.Context(), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Monthly Payments Report
// @Description  Everything collected in one calendar month
// @Tags         reports
// @Produce      json
// @Param        month  query  string  false  "Month YYYY-MM, defaults to current"
// @Success      200  {object}  reportingdomain.MonthlyPaymentsReport
// @Router       /v1/reports/monthly [get]
func (s *Server) ReportMonthlyPayments(c *gin.Context) {
	asOf := s.clock.Now()
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			AbortWithError(c, newValidationError("month", "invalid_month", "invalid month"))
			return
		}
		asOf = parsed
	}

	resp, err := s.reportingSvc.MonthlyPayments(c.Request.Context(), asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Contract Expirations Report
// @Description  Payment methods binned by remaining lifetime
// @Tags         reports
// @Produce      json
// @Success      200  {object}  reportingdomain.ContractExpirationsReport
// @Router       /v1/reports/expirations [get]
func (s *Server) ReportContractExpirations(c *gin.Context) {
	resp, err := s.reportingSvc.ContractExpirations(c.Request.Context(), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Overview Report
// @Description  Dashboard headline counters
// @Tags         reports
// @Produce      json
// @Success      200  {object}  reportingdomain.Overview
// @Router       /v1/reports/overview [get]
func (s *Server) ReportOverview(c *gin.Context) {
	resp, err := s.reportingSvc.Overview(c.Request.Context(), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Deactivation Candidates
// @Description  Customers past grace period with service still on
// @Tags         reports
// @Produce      json
// @Success      200  {object}  []ledgerdomain.OverduePayment
// @Router       /v1/reports/deactivation-candidates [get]
func (s *Server) ReportDeactivationCandidates(c *gin.Context) {
	if s.monitorWorker == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	resp, err := s.monitorWorker.ListDeactivationCandidates(c.Request.Context(), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
