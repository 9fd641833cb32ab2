package harness_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var simpleRequest = jmap.Request{
	Using: []string{jmap.CoreCapability, jmap.MailCapability},
	MethodCalls: []jmap.MethodCall{
		{
			Name:          "Mailbox/get",
			Arguments:     ldvalue.ObjectBuild().Set("ids", ldvalue.Null()).Build(),
			CorrelationID: "0",
		},
	},
}

func TestHTTPTransportSendsJSONEnvelope(t *testing.T) {
	responseBody := []byte(`{"methodResponses":[["Mailbox/get",{"list":[]},"0"]],"sessionState":"s1"}`)
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(200, headers, responseBody))
	server := httptest.NewServer(handler)
	defer server.Close()

	transport := harness.NewHTTPTransport(server.URL, nil)
	response, err := transport.SendBatch(context.Background(), simpleRequest)
	require.NoError(t, err)
	require.Len(t, response.MethodResponses, 1)
	assert.Equal(t, "Mailbox/get", response.MethodResponses[0].Name)
	assert.Equal(t, "0", response.MethodResponses[0].CorrelationID)
	assert.Equal(t, "s1", response.SessionState)

	info := <-requestsCh
	assert.Equal(t, "POST", info.Request.Method)
	assert.Equal(t, "application/json", info.Request.Header.Get("Content-Type"))

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(info.Body, &sent))
	assert.Contains(t, sent, "using")
	assert.Contains(t, sent, "methodCalls")
}

func TestHTTPTransportRejectsNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(503))
	defer server.Close()

	transport := harness.NewHTTPTransport(server.URL, nil)
	_, err := transport.SendBatch(context.Background(), simpleRequest)
	require.Error(t, err)
	var transportErr *harness.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Contains(t, transportErr.Error(), "503")
}

func TestHTTPTransportRejectsMalformedBody(t *testing.T) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	server := httptest.NewServer(httphelpers.HandlerWithResponse(200, headers, []byte("not json")))
	defer server.Close()

	transport := harness.NewHTTPTransport(server.URL, nil)
	_, err := transport.SendBatch(context.Background(), simpleRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestHTTPTransportReportsConnectionFailure(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	transport := harness.NewHTTPTransport(url, nil)
	_, err := transport.SendBatch(context.Background(), simpleRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "round trip")
}
