package harness

import "errors"

// ErrPristineUnsupported is returned by PristineAccount when the server
// adapter cannot provide isolated accounts. Tests that need one are skipped,
// not failed, when they see this.
var ErrPristineUnsupported = errors.New("server adapter cannot provide pristine accounts")

// AccountHandle identifies a provisioned account on the server under test.
type AccountHandle struct {
	// AccountID is the JMAP account id to use in method arguments.
	AccountID string

	closer func() error
}

// Close releases the account on whatever provisioned it. Safe to call on a
// handle with no disposal step.
func (a *AccountHandle) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// ServerAdapter provisions accounts on the server under test. It is a
// black-box factory from the suite's point of view; the one contract is that
// PristineAccount either returns an account guaranteed free of pre-existing
// data or fails with ErrPristineUnsupported.
type ServerAdapter interface {
	// AnyAccount returns an account that may contain pre-existing data.
	AnyAccount() (*AccountHandle, error)

	// PristineAccount returns an account guaranteed to be empty, or
	// ErrPristineUnsupported.
	PristineAccount() (*AccountHandle, error)
}
