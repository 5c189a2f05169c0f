package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performJSON(t *testing.T, handler gin.HandlerFunc) *Response {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestSuccess(t *testing.T) {
	resp := performJSON(t, func(c *gin.Context) {
		Success(c, gin.H{"id": 1})
	})

	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestError_DefaultMessage(t *testing.T) {
	resp := performJSON(t, func(c *gin.Context) {
		Error(c, CodeResourceNotFound, "")
	})

	assert.Equal(t, CodeResourceNotFound, resp.Code)
	assert.Equal(t, "resource not found", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestError_CustomMessage(t *testing.T) {
	resp := performJSON(t, func(c *gin.Context) {
		AuthError(c, "token expired")
	})

	assert.Equal(t, CodeAuthFailed, resp.Code)
	assert.Equal(t, "token expired", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	resp := performJSON(t, func(c *gin.Context) {
		SuccessPage(c, 42, 2, 20, []string{"a", "b"})
	})

	assert.Equal(t, CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 42, data["total"])
	assert.EqualValues(t, 2, data["page"])
	assert.EqualValues(t, 20, data["page_size"])
}
