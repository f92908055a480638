package v1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
	"github.com/rxdesk/rxdesk/internal/service"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"prescription not found", prescription.ErrPrescriptionNotFound, http.StatusNotFound},
		{"order not found", order.ErrOrderNotFound, http.StatusNotFound},
		{"stock item not found", stock.ErrItemNotFound, http.StatusNotFound},
		{"invalid prescription transition", prescription.ErrInvalidTransition, http.StatusConflict},
		{"invalid order transition", order.ErrInvalidTransition, http.StatusConflict},
		{"todo already ordered", stock.ErrTodoNotPending, http.StatusConflict},
		{"not arrived", order.ErrNotArrived, http.StatusBadRequest},
		{"validation", &service.ValidationError{Fields: []string{"name is required"}}, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked account", service.ErrAccountLocked, http.StatusTooManyRequests},
		{"storage fault", &service.PersistenceError{Op: "updating", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondServiceError(c, tc.err)

			if rec.Code != tc.want {
				t.Fatalf("status for %v = %d, want %d", tc.err, rec.Code, tc.want)
			}
		})
	}
}

func TestRespondServiceErrorUnwrapsDeepErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	// Wrapped sentinels still map to their status.
	respondServiceError(c, errors.Join(errors.New("loading record"), prescription.ErrPrescriptionNotFound))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
