package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/jmap-tools/jmap-contract-tests/framework"

	retry "github.com/StirlingMarketingGroup/go-retry"
)

const statusPollAttempts = 50
const statusPollInterval = time.Millisecond * 200

// PristineCapability is the capability a test service declares when it can
// provision accounts guaranteed free of pre-existing data.
const PristineCapability = "pristine-accounts"

// ServiceInfo is the metadata returned by a test service's status resource.
type ServiceInfo struct {
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	APIURL       string   `json:"apiUrl"`
}

// ServiceAdapter drives a test service that fronts the server under test: a
// small HTTP facade that reports the server's JMAP API URL and capabilities
// on GET, provisions a test account on POST, and disposes of one on DELETE.
type ServiceAdapter struct {
	baseURL string
	info    ServiceInfo
	logger  framework.Logger
}

type createAccountParams struct {
	Tag      string `json:"tag,omitempty"`
	Pristine bool   `json:"pristine,omitempty"`
}

type createAccountResponse struct {
	AccountID string `json:"accountId"`
}

// NewServiceAdapter queries the test service's status resource, retrying
// until the service answers or the attempts run out, and returns an adapter
// bound to it. Startup progress is written to the given writer.
func NewServiceAdapter(baseURL string, logger framework.Logger, startupOutput io.Writer) (*ServiceAdapter, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	fmt.Fprintf(startupOutput, "Connecting to test service at %s", baseURL)

	var info ServiceInfo
	err := retry.Retry(func() error {
		resp, err := http.DefaultClient.Get(baseURL)
		if err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return fmt.Errorf("test service returned status code %d", resp.StatusCode)
		}
		if resp.Body == nil {
			return errors.New("test service returned no metadata")
		}
		respData, err := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}
		if err := json.Unmarshal(respData, &info); err != nil {
			return fmt.Errorf("malformed status response from test service: %s", string(respData))
		}
		return nil
	}, statusPollAttempts, func(err error) error {
		fmt.Fprintf(startupOutput, ".")
		time.Sleep(statusPollInterval)
		return nil
	}, func() error {
		return nil
	})
	fmt.Fprintln(startupOutput)
	if err != nil {
		return nil, fmt.Errorf("test service did not become ready: %w", err)
	}
	if info.APIURL == "" {
		return nil, errors.New("test service status did not include a JMAP API URL")
	}
	fmt.Fprintf(startupOutput, "Test service: %s\n", info.Description)

	return &ServiceAdapter{baseURL: baseURL, info: info, logger: logger}, nil
}

// Info returns the metadata the service reported at startup.
func (s *ServiceAdapter) Info() ServiceInfo { return s.info }

// HasCapability reports whether the service declared the given capability.
func (s *ServiceAdapter) HasCapability(desired string) bool {
	for _, capability := range s.info.Capabilities {
		if capability == desired {
			return true
		}
	}
	return false
}

// MissingCapabilities returns, of the given capabilities, those the service
// did not declare.
func (s *ServiceAdapter) MissingCapabilities(all []string) []string {
	var missing []string
	for _, c := range all {
		if !s.HasCapability(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// AnyAccount provisions an account that may contain pre-existing data.
func (s *ServiceAdapter) AnyAccount() (*AccountHandle, error) {
	return s.createAccount(createAccountParams{})
}

// PristineAccount provisions an empty account, or fails with
// ErrPristineUnsupported when the service does not declare that capability.
func (s *ServiceAdapter) PristineAccount() (*AccountHandle, error) {
	if !s.HasCapability(PristineCapability) {
		return nil, ErrPristineUnsupported
	}
	return s.createAccount(createAccountParams{Pristine: true})
}

func (s *ServiceAdapter) createAccount(params createAccountParams) (*AccountHandle, error) {
	data, _ := json.Marshal(params)
	s.logger.Printf("Requesting account from test service: %s", string(data))

	resp, err := http.DefaultClient.Post(s.baseURL, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusNotImplemented {
		return nil, ErrPristineUnsupported
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected response status %d from test service: %s", resp.StatusCode, string(body))
	}

	var created createAccountResponse
	if err := json.Unmarshal(body, &created); err != nil || created.AccountID == "" {
		return nil, fmt.Errorf("test service returned no account id: %s", string(body))
	}

	resourceURL := resp.Header.Get("Location")
	if resourceURL != "" && !strings.HasPrefix(resourceURL, "http:") && !strings.HasPrefix(resourceURL, "https:") {
		resourceURL = s.baseURL + resourceURL
	}

	handle := &AccountHandle{AccountID: created.AccountID}
	if resourceURL != "" {
		logger := s.logger
		handle.closer = func() error { return disposeResource(resourceURL, logger) }
	}
	s.logger.Printf("Provisioned account %q", created.AccountID)
	return handle, nil
}

func disposeResource(resourceURL string, logger framework.Logger) error {
	req, err := http.NewRequest("DELETE", resourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	if resp.StatusCode != 200 && resp.StatusCode != 204 {
		return fmt.Errorf("DELETE request to test service returned HTTP status %d", resp.StatusCode)
	}
	logger.Printf("Disposed of test service resource %s", resourceURL)
	return nil
}

// StopService tells the test service that it should exit.
func (s *ServiceAdapter) StopService() error {
	req, _ := http.NewRequest("DELETE", s.baseURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err == nil && resp.StatusCode >= 300 {
		return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
	}
	// It's normal for the request to return an I/O error if the service immediately quit before sending a response
	return nil
}
