package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
)

type createCustomerRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Mbps         int    `json:"mbps"`
	State        string `json:"state"`
	ContractDate string `json:"contract_date"`
	PaymentDay   int    `json:"payment_day"`

	PaymentType    string `json:"payment_type"`
	Bank           string `json:"bank"`
	IBAN           string `json:"iban"`
	ExpirationDate string `json:"expiration_date"`

	MonthlyValue int64 `json:"monthly_value"`
}

// @Summary      Register Customer
// @Description  Register a new customer with payment method and first obligation
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body createCustomerRequest true "Register Customer Request"
// @Success      200  {object}  customerdomain.Customer
// @Router       /v1/customers [post]
func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	contractDate, err := time.Parse(dateLayout, strings.TrimSpace(req.ContractDate))
	if err != nil {
		AbortWithError(c, newValidationError("contract_date", "invalid_contract_date", "invalid contract_date"))
		return
	}

	var expirationDate time.Time
	if raw := strings.TrimSpace(req.ExpirationDate); raw != "" {
		expirationDate, err = time.Parse(dateLayout, raw)
		if err != nil {
			AbortWithError(c, newValidationError("expiration_date", "invalid_expiration_date", "invalid expiration_date"))
			return
		}
	}

	resp, err := s.customerSvc.Register(c.Request.Context(), customerdomain.RegisterRequest{
		Name:           strings.TrimSpace(req.Name),
		Address:        strings.TrimSpace(req.Address),
		Phone:          strings.TrimSpace(req.Phone),
		Mbps:           req.Mbps,
		State:          customerdomain.CustomerState(strings.TrimSpace(req.State)),
		ContractDate:   contractDate,
		PaymentDay:     req.PaymentDay,
		PaymentType:    strings.TrimSpace(req.PaymentType),
		Bank:           strings.TrimSpace(req.Bank),
		IBAN:           strings.TrimSpace(req.IBAN),
		ExpirationDate: expirationDate,
		MonthlyValue:   req.MonthlyValue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Customers
// @Description  List customers with derived payment status
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        name            query  string  false  "Name contains"
// @Param        state           query  string  false  "Customer state"
// @Param        payment_status  query  string  false  "Derived payment status"
// @Param        page            query  int     false  "Page"
// @Param        per_page        query  int     false  "Page Size"
// @Success      200  {object}  customerdomain.ListResponse
// @Router       /v1/customers [get]
func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		Name          string `form:"name"`
		State         string `form:"state"`
		PaymentStatus string `form:"payment_status"`
		Page          int    `form:"page"`
		PerPage       int    `form:"per_page"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentState := daterules.PaymentState(strings.ToUpper(strings.TrimSpace(query.PaymentStatus)))
	switch paymentState {
	case "", daterules.PaymentStatePaid, daterules.PaymentStateOverdue,
		daterules.PaymentStateCritical, daterules.PaymentStateOK:
	default:
		AbortWithError(c, newValidationError("payment_status", "invalid_payment_status", "invalid payment_status"))
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListFilter{
		NameContains: strings.TrimSpace(query.Name),
		State:        customerdomain.CustomerState(strings.TrimSpace(query.State)),
		PaymentState: paymentState,
		Page:         query.Page,
		PerPage:      query.PerPage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Customer
// @Description  Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  customerdomain.Customer
// @Router       /v1/customers/{id} [get]
func (s *Server) GetCustomerByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateCustomerStateRequest struct {
	State string `json:"state"`
}

// @Summary      Update Customer State
// @Description  Flip the back-office customer state
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Customer ID"
// @Param        request  body  updateCustomerStateRequest  true  "Update State Request"
// @Success      200  {object}  map[string]string
// @Router       /v1/customers/{id}/state [patch]
func (s *Server) UpdateCustomerState(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateCustomerStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	state := customerdomain.CustomerState(strings.TrimSpace(req.State))
	if err := s.customerSvc.UpdateState(c.Request.Context(), id, state); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id.String(), "state": string(state)}})
}
