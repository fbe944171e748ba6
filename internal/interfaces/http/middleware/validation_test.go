package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationTarget struct {
	BatchSize int `json:"batch_size" binding:"omitempty,max=10"`
}

func TestSetupValidator_UsesJSONNames(t *testing.T) {
	SetupValidator()

	var bindErr error
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var target validationTarget
		bindErr = c.ShouldBindJSON(&target)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"batch_size":50}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, bindErr, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "batch_size", verrs[0].Field())
	assert.Equal(t, "max", verrs[0].Tag())
}
