// Package harness connects the conformance suite to the server under test:
// the HTTP transport that carries JMAP batches, the adapter that provisions
// test accounts, and the orchestration layer that correlates and checks
// every exchange before tests see it.
package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/jmap-tools/jmap-contract-tests/framework"
	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"github.com/dustin/go-humanize"
)

// Transport performs one JMAP round trip. Implementations must preserve
// correlation ids and return the decoded response batch; retry, timeout and
// cancellation policy all live behind this boundary.
type Transport interface {
	SendBatch(ctx context.Context, request jmap.Request) (*jmap.Response, error)
}

// TransportError wraps any failure of the round trip itself, whether a
// network error, a bad HTTP status, or an undecodable body. It surfaces as an
// overall request failure; no partial batch processing is attempted.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPTransport sends request envelopes to a JMAP API endpoint as JSON over
// HTTP POST.
type HTTPTransport struct {
	apiURL     string
	httpClient *http.Client
	logger     framework.Logger
}

// NewHTTPTransport creates a transport for the given JMAP API endpoint URL.
// A nil logger disables debug output.
func NewHTTPTransport(apiURL string, logger framework.Logger) *HTTPTransport {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &HTTPTransport{
		apiURL:     apiURL,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

func (t *HTTPTransport) SendBatch(ctx context.Context, request jmap.Request) (*jmap.Response, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return nil, &TransportError{Op: "encode request", Err: err}
	}
	t.logger.Printf("sending %s to %s: %s", humanize.Bytes(uint64(len(data))), t.apiURL, string(data))

	req, err := http.NewRequest("POST", t.apiURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "round trip", Err: err}
	}
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Op:  "round trip",
			Err: fmt.Errorf("server returned HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}
	t.logger.Printf("received %s: %s", humanize.Bytes(uint64(len(body))), string(body))

	var decoded jmap.Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &TransportError{Op: "decode response", Err: err}
	}
	return &decoded, nil
}
