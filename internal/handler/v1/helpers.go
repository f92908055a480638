package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
	"github.com/rxdesk/rxdesk/internal/repository"
	"github.com/rxdesk/rxdesk/internal/service"
	"github.com/rxdesk/rxdesk/pkg/auth"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	var persistErr *service.PersistenceError
	if errors.As(err, &persistErr) {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "storage unavailable, please retry",
			Code:  "PERSISTENCE_FAILURE",
		})
		return
	}

	switch {
	case errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, stock.ErrItemNotFound),
		errors.Is(err, stock.ErrTodoNotFound),
		errors.Is(err, repository.ErrSettingsNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, prescription.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, stock.ErrTodoNotPending):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, order.ErrNotArrived),
		errors.Is(err, prescription.ErrInvalidQuantity),
		errors.Is(err, stock.ErrNegativeStock),
		errors.Is(err, stock.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "account is inactive"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	case errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenTypeMismatch):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

const actorContextKey = "rxdesk.actor"

// actorFrom returns the authenticated actor placed by the auth middleware.
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return domain.Actor{}, false
	}
	return actor, true
}
