package capabilities

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCapabilitiesDocument(t *testing.T) {
	router := gin.New()
	NewHandler("v1").Register(router.Group("/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/capabilities", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env httpapi.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Nil(t, env.Error)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "v1", doc.APIVersion)
	assert.Equal(t, "sandbox", doc.Mode)

	require.Len(t, doc.Corridors, 3)
	names := []string{doc.Corridors[0].Name, doc.Corridors[1].Name, doc.Corridors[2].Name}
	assert.Equal(t, []string{"pix", "spei", "ach"}, names)
	assert.Equal(t, "BRL", doc.Corridors[0].ToCurrency)

	assert.Equal(t, "/v1/x402/facilitator", doc.X402.Facilitator)
	require.Len(t, doc.X402.Kinds, 1)
	assert.Equal(t, "exact", doc.X402.Kinds[0].Scheme)
	assert.Equal(t, "payos-sandbox", doc.X402.Kinds[0].Network)

	assert.Equal(t, "/v1/ucp/settle", doc.Endpoints["settle"])
	assert.Equal(t, "stdio", doc.MCP["transport"])
}
