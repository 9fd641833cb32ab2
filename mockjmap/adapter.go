package mockjmap

import (
	"context"

	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/jmap"
)

// SendBatch lets a Server stand in for the harness transport directly, with
// no HTTP in between. Useful for testing the engine itself.
func (s *Server) SendBatch(ctx context.Context, request jmap.Request) (*jmap.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Execute(request), nil
}

// Adapter provisions accounts straight off an in-process Server.
type Adapter struct {
	Server *Server

	// DisablePristine makes PristineAccount fail with
	// ErrPristineUnsupported, for testing the skip path.
	DisablePristine bool
}

func (a *Adapter) AnyAccount() (*harness.AccountHandle, error) {
	return a.newHandle(), nil
}

func (a *Adapter) PristineAccount() (*harness.AccountHandle, error) {
	if a.DisablePristine {
		return nil, harness.ErrPristineUnsupported
	}
	// every in-memory account starts empty
	return a.newHandle(), nil
}

func (a *Adapter) newHandle() *harness.AccountHandle {
	id := a.Server.CreateAccount()
	return &harness.AccountHandle{AccountID: id}
}
