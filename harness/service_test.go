package harness_test

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/mockjmap"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMockService(t *testing.T) (*mockjmap.Server, *harness.ServiceAdapter, func()) {
	server := mockjmap.NewServer()
	httpServer := httptest.NewServer(mockjmap.NewHandler(server))

	adapter, err := harness.NewServiceAdapter(httpServer.URL, nil, ioutil.Discard)
	if err != nil {
		httpServer.Close()
		t.Fatalf("service did not start: %s", err)
	}
	return server, adapter, httpServer.Close
}

func TestServiceAdapterReadsStatusMetadata(t *testing.T) {
	_, adapter, stop := startMockService(t)
	defer stop()

	info := adapter.Info()
	assert.NotEmpty(t, info.Description)
	assert.Contains(t, info.APIURL, "/jmap")
	assert.True(t, adapter.HasCapability(harness.PristineCapability))
	assert.False(t, adapter.HasCapability("no-such-capability"))
	assert.Empty(t, adapter.MissingCapabilities([]string{harness.PristineCapability}))
	assert.Equal(t, []string{"x"}, adapter.MissingCapabilities([]string{"x"}))
}

func TestServiceAdapterProvisionsAndDisposesAccounts(t *testing.T) {
	server, adapter, stop := startMockService(t)
	defer stop()

	handle, err := adapter.AnyAccount()
	require.NoError(t, err)
	require.NotEmpty(t, handle.AccountID)

	// the account is real: a batch against it succeeds
	transport := harness.NewHTTPTransport(adapter.Info().APIURL, nil)
	client := harness.NewClient(transport, handle.AccountID, false)
	result, err := client.Do(context.Background(), getCall(""))
	require.NoError(t, err)
	assert.True(t, result.OK())

	// Close tears the account down on the service side
	require.NoError(t, handle.Close())
	assert.False(t, server.DeleteAccount(handle.AccountID))
}

func TestServiceAdapterPristineAccount(t *testing.T) {
	_, adapter, stop := startMockService(t)
	defer stop()

	handle, err := adapter.PristineAccount()
	require.NoError(t, err)
	require.NotEmpty(t, handle.AccountID)
	require.NoError(t, handle.Close())
}

func TestPristineAccountFailsWhenCapabilityNotDeclared(t *testing.T) {
	status, _ := json.Marshal(map[string]interface{}{
		"description":  "service without pristine accounts",
		"capabilities": []string{},
		"apiUrl":       "http://localhost/jmap",
	})
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	server := httptest.NewServer(httphelpers.HandlerWithResponse(200, headers, status))
	defer server.Close()

	adapter, err := harness.NewServiceAdapter(server.URL, nil, ioutil.Discard)
	require.NoError(t, err)

	_, err = adapter.PristineAccount()
	assert.Equal(t, harness.ErrPristineUnsupported, err)
}

func TestServiceAdapterRejectsStatusWithoutAPIURL(t *testing.T) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	server := httptest.NewServer(httphelpers.HandlerWithResponse(200, headers,
		[]byte(`{"description":"incomplete"}`)))
	defer server.Close()

	_, err := harness.NewServiceAdapter(server.URL, nil, ioutil.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API URL")
}
