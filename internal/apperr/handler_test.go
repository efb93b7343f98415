package apperr_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGlobalErrorHandler_StatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.NewValidation("bad ticker"), http.StatusBadRequest},
		{"not found", fmt.Errorf("status ACME: %w", apperr.ErrNotFound), http.StatusNotFound},
		{"storage", fmt.Errorf("%w: timeout", apperr.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"fetch", fmt.Errorf("%w: 500", apperr.ErrFetchFailed), http.StatusBadGateway},
		{"ledger mode", apperr.ErrLedgerMode, http.StatusConflict},
		{"echo", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			apperr.GlobalErrorHandler()(tc.err, c)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
