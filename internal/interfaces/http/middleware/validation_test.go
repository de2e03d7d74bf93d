package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentBody struct {
	InvoiceID string          `json:"invoice_id" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	Mode      string          `json:"mode" binding:"required,oneof=CASH BANK CHEQUE UPI PAYMENT_LINK"`
}

func newBindRouter(limit int64) *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/payments", func(c *gin.Context) {
		var body paymentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleBindError(t *testing.T) {
	router := newBindRouter(1 << 10)

	t.Run("valid body", func(t *testing.T) {
		w := post(router, `{"invoice_id":"6f1c1f9e-8a4e-4a53-9b8e-0d0c7f2f7b11","amount":"250.00","mode":"CASH"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("field rules use json names", func(t *testing.T) {
		w := post(router, `{"invoice_id":"nope","amount":"0","mode":"BARTER"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		info := decodeError(t, w)
		assert.Equal(t, "VALIDATION_ERROR", info.Code)
		fields := map[string]string{}
		for _, f := range info.Fields {
			fields[f.Field] = f.Message
		}
		assert.Equal(t, "Invalid UUID format", fields["invoice_id"])
		assert.Equal(t, "Must be greater than 0", fields["amount"])
		assert.Contains(t, fields["mode"], "Must be one of")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := post(router, `{"invoice_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)
	})
}

func TestBodyLimit(t *testing.T) {
	router := newBindRouter(64)

	t.Run("declared length over limit", func(t *testing.T) {
		w := post(router, `{"invoice_id":"`+strings.Repeat("x", 100)+`"}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "REQUEST_TOO_LARGE", decodeError(t, w).Code)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"invoice_id":"`+strings.Repeat("x", 100)+`"}`))
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
