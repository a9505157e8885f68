package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/druidfamiliar/core/application/executor"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
	"github.com/hyperterse/druidfamiliar/core/testing/mocks"
)

func TestNew_Defaults(t *testing.T) {
	exec, err := executor.New("10.0.0.1", 8082)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1", exec.Host())
	assert.Equal(t, 8082, exec.Port())
	assert.Equal(t, "/druid/v2/", exec.Endpoint())
	assert.Equal(t, "http", exec.Protocol())
	assert.Equal(t, "POST", exec.HTTPMethod())
	assert.Equal(t, map[string]string{"content-type": "application/json;charset=utf-8"}, exec.Headers())
	assert.Equal(t, "http://10.0.0.1:8082/druid/v2/", exec.BaseURL())
}

func TestNew_RejectsInvalidConfiguration(t *testing.T) {
	_, err := executor.New("localhost", 8082, executor.WithProtocol("ftp"))
	assert.True(t, errors.IsUnsupportedProtocol(err))

	_, err = executor.New("localhost", 8082, executor.WithHTTPMethod("PUT"))
	assert.True(t, errors.IsUnsupportedMethod(err))

	_, err = executor.New("localhost", 8082, executor.WithClient(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestBaseURL(t *testing.T) {
	for _, protocol := range []string{"http", "https"} {
		for _, method := range []string{"GET", "POST"} {
			t.Run(protocol+"_"+method, func(t *testing.T) {
				exec, err := executor.New("broker.local", 8888,
					executor.WithProtocol(protocol),
					executor.WithHTTPMethod(method),
					executor.WithEndpoint("/druid/v2/"),
				)
				require.NoError(t, err)
				assert.Equal(t, protocol+"://broker.local:8888/druid/v2/", exec.BaseURL())
			})
		}
	}
}

func TestBaseURL_Hosts(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "hostname", host: "broker.local", want: "http://broker.local:8082/druid/v2/"},
		{name: "ipv4", host: "10.0.0.7", want: "http://10.0.0.7:8082/druid/v2/"},
		{name: "bare ipv6", host: "::1", want: "http://[::1]:8082/druid/v2/"},
		{name: "bracketed ipv6", host: "[::1]", want: "http://[::1]:8082/druid/v2/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, err := executor.New(tt.host, 8082)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exec.BaseURL())

			req, err := exec.CreateRequest(context.Background(), []byte(`{}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.URL.String())
		})
	}
}

func TestBaseURL_FollowsSetters(t *testing.T) {
	exec, err := executor.New("a", 1)
	require.NoError(t, err)

	exec.SetHost("b")
	exec.SetPort(2)
	exec.SetEndpoint("/druid/v2/sql/")
	require.NoError(t, exec.SetProtocol("HTTPS"))

	assert.Equal(t, "https://b:2/druid/v2/sql/", exec.BaseURL())
}

func TestSetProtocol(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "http", want: "http"},
		{input: "HTTPS", want: "https"},
		{input: "HtTp", want: "http"},
		{input: "ftp", wantErr: true},
		{input: "", wantErr: true},
		{input: "https ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			exec, err := executor.New("localhost", 8082, executor.WithProtocol("https"))
			require.NoError(t, err)

			err = exec.SetProtocol(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsUnsupportedProtocol(err))
				assert.Contains(t, err.Error(), "supported protocols are: http, https")
				assert.Equal(t, "https", exec.Protocol(), "failed setter must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exec.Protocol())
		})
	}
}

func TestSetHTTPMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "GET", want: "GET"},
		{input: "post", want: "POST"},
		{input: "Get", want: "GET"},
		{input: "PUT", wantErr: true},
		{input: "delete", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			exec, err := executor.New("localhost", 8082)
			require.NoError(t, err)

			err = exec.SetHTTPMethod(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsUnsupportedMethod(err))
				assert.Contains(t, err.Error(), "supported methods are: GET, POST")
				assert.Equal(t, "POST", exec.HTTPMethod(), "failed setter must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exec.HTTPMethod())
		})
	}
}

func TestHeaders(t *testing.T) {
	exec, err := executor.New("localhost", 8082)
	require.NoError(t, err)

	exec.SetHeaders(map[string]string{"X-Custom": "1"})
	assert.Equal(t, map[string]string{"X-Custom": "1"}, exec.Headers(), "headers are replaced, not merged")

	headers := exec.Headers()
	headers["X-Other"] = "2"
	assert.NotContains(t, exec.Headers(), "X-Other")

	exec.SetHeaders(nil)
	assert.Empty(t, exec.Headers())
}

func TestClone(t *testing.T) {
	exec, err := executor.New("localhost", 8082, executor.WithClient(mocks.NewMockDoer(t)))
	require.NoError(t, err)

	clone := exec.Clone()
	require.NoError(t, clone.SetHTTPMethod("GET"))
	clone.SetHeaders(map[string]string{"X-Clone": "1"})
	clone.SetEndpoint("/druid/v2/sql/")

	assert.Equal(t, "POST", exec.HTTPMethod())
	assert.Equal(t, "/druid/v2/", exec.Endpoint())
	assert.Equal(t, executor.DefaultHeaders(), exec.Headers())
	assert.Equal(t, "GET", clone.HTTPMethod())
}
