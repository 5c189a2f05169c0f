package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/response"
	"github.com/judiguard/judi_guard_server/internal/service"
)

func setupPredictHandler(t *testing.T) (*PredictHandler, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]interface{}{
			"classification":  "NON_JUDI",
			"confidenceScore": 0.88,
		}
		if req.Text == "DEPO99 gacor maxwin" {
			resp["classification"] = "JUDI"
			resp["confidenceScore"] = 0.99
		}
		json.NewEncoder(w).Encode(resp)
	}))

	cfg := &config.MLConfig{
		BaseURL:        server.URL,
		ModelVersion:   "distilbert-v1",
		TimeoutSeconds: 5,
	}

	handler := NewPredictHandler(service.NewPredictService(cfg))
	return handler, server.Close
}

func TestPredictHandler_Predict(t *testing.T) {
	handler, cleanup := setupPredictHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/predict", handler.Predict)

	w := performRequest(router, "POST", "/predict", dto.PredictTextRequest{
		Text: "DEPO99 gacor maxwin",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "JUDI", data["classification"])
	assert.InDelta(t, 0.99, data["confidence_score"], 0.001)
}

func TestPredictHandler_Predict_EmptyText(t *testing.T) {
	handler, cleanup := setupPredictHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/predict", handler.Predict)

	w := performRequest(router, "POST", "/predict", dto.PredictTextRequest{})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}
