package agentcontext

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestContextSnapshot(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("api_key", "pk_test_abc123xy") })
	NewHandler(5*time.Minute, 15*time.Minute, 25, 50).Register(router.Group("/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/context", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env httpapi.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Nil(t, env.Error)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var snapshot Context
	require.NoError(t, json.Unmarshal(raw, &snapshot))

	assert.Equal(t, "sandbox", snapshot.Mode)
	assert.Equal(t, "pk_test_", snapshot.KeyPrefix)
	assert.Equal(t, []string{"pix", "spei", "ach"}, snapshot.Corridors)
	assert.Equal(t, "5m0s", snapshot.QuoteTTL)
	assert.Equal(t, "15m0s", snapshot.TokenTTL)
	assert.Equal(t, 25.0, snapshot.RateLimitRPS)
	assert.Equal(t, 50, snapshot.RateLimitBurst)
	assert.Contains(t, snapshot.FailureTriggers, "amount_cents_99")
}
