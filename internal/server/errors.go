package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/daterules"
	importerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/importer/domain"
	ledgerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/domain"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	statusdomain "github.com/toty12222/controlo-fibra-netkamba/internal/status/domain"
	pkgdb "github.com/toty12222/controlo-fibra-netkamba/pkg/db"
	"go.uber.org/zap"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type apiError struct {
	status  int
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

func invalidRequestError() error {
	return &apiError{
		status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) error {
	return &apiError{
		status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// AbortWithError maps domain errors onto HTTP statuses and writes the
// error envelope.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if !errors.As(err, &api) {
		api = classify(err)
	}

	if api.status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(api.status, gin.H{"error": api})
}

func classify(err error) *apiError {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound):
		return &apiError{status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}

	case errors.Is(err, ErrServiceUnavailable):
		return &apiError{status: http.StatusServiceUnavailable, Code: "service_unavailable", Message: "service unavailable"}

	case errors.Is(err, ledgerdomain.ErrDuplicateLedgerEntry):
		return &apiError{status: http.StatusConflict, Code: err.Error(), Message: "customer already has an open obligation"}

	case errors.Is(err, ledgerdomain.ErrNoOutstandingPayment):
		return &apiError{status: http.StatusConflict, Code: err.Error(), Message: "no outstanding payment to settle"}

	case errors.Is(err, importerdomain.ErrBatchRejected):
		return &apiError{status: http.StatusUnprocessableEntity, Code: err.Error(), Message: "batch contained invalid rows"}

	case isValidationError(err):
		return &apiError{status: http.StatusBadRequest, Code: err.Error(), Message: "invalid request"}

	case errors.Is(err, pkgdb.ErrStorage):
		return &apiError{status: http.StatusInternalServerError, Code: "storage_failure", Message: "storage failure"}

	default:
		return &apiError{status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"}
	}
}

func isValidationError(err error) bool {
	for _, candidate := range []error{
		customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidMbps,
		customerdomain.ErrInvalidPaymentDay,
		customerdomain.ErrInvalidState,
		customerdomain.ErrInvalidContractDate,
		ledgerdomain.ErrInvalidCustomer,
		ledgerdomain.ErrInvalidAmount,
		ledgerdomain.ErrInvalidWindow,
		statusdomain.ErrInvalidCustomer,
		notificationdomain.ErrInvalidCustomer,
		notificationdomain.ErrInvalidMessage,
		notificationdomain.ErrInvalidCategory,
		importerdomain.ErrEmptyBatch,
		daterules.ErrInvalidDate,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
