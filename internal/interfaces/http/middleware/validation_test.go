package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	bind := func(body string, dst any) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		return c.ShouldBindJSON(dst)
	}

	t.Run("decimal bounds use json names", func(t *testing.T) {
		var req procurementapp.ReceiptRequest
		err := bind(`{"receive_percent":"150"}`, &req)
		require.Error(t, err)
		details := ValidationDetails(err)
		require.Len(t, details, 1)
		assert.Equal(t, "receive_percent", details[0].Field)
		assert.Equal(t, "Must be less than or equal to 100", details[0].Message)
	})

	t.Run("decimal within bounds", func(t *testing.T) {
		var req procurementapp.ReceiptRequest
		require.NoError(t, bind(`{"receive_percent":"40.5"}`, &req))
		assert.Equal(t, "40.5", req.ReceivePercent.String())
	})

	t.Run("required field", func(t *testing.T) {
		var req procurementapp.RejectRequest
		details := ValidationDetails(bind(`{}`, &req))
		require.Len(t, details, 1)
		assert.Equal(t, "reason", details[0].Field)
		assert.Equal(t, "This field is required", details[0].Message)
	})

	t.Run("not a validator error", func(t *testing.T) {
		var req procurementapp.RejectRequest
		err := bind(`{"reason":`, &req)
		require.Error(t, err)
		assert.Nil(t, ValidationDetails(err))
	})
}
