package transport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/druidfamiliar/core/infrastructure/transport"
)

func TestNewClient(t *testing.T) {
	assert.Equal(t, transport.DefaultTimeout, transport.NewClient(0).Timeout)
	assert.Equal(t, 5*time.Second, transport.NewClient(5*time.Second).Timeout)
}

func TestStrictStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantErrMsg string
	}{
		{name: "ok passes through", status: http.StatusOK, body: "[]"},
		{name: "no content passes through", status: http.StatusNoContent},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"Unknown exception"}`, wantErr: true, wantErrMsg: `unexpected status 500: {"error":"Unknown exception"}`},
		{name: "not found without body", status: http.StatusNotFound, wantErr: true, wantErrMsg: "unexpected status 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
			require.NoError(t, err)

			resp, err := transport.StrictStatus(transport.NewClient(time.Second)).Do(req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, resp)
				var statusErr *transport.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.StatusCode)
				assert.EqualError(t, err, tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
