package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	before := testutil.ToFloat64(FramesSent)
	FramesSent.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(FramesSent))

	Transactions.WithLabelValues("Region", ResultOK).Inc()
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "redrcp_frames_sent_total"))
	require.True(t, strings.Contains(body, `redrcp_transactions_total{command="Region",result="ok"}`))
}
