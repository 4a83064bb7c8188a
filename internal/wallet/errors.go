package wallet

import (
	"errors"
	"fmt"
)

// Provider rejection codes (EIP-1193 and the JSON-RPC range used by wallets)
const (
	CodeUserRejected   = 4001
	CodeRequestPending = -32002
)

// ErrorKind classifies a provider failure
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindProviderMissing
	ErrKindUserRejected
	ErrKindRequestPending
	ErrKindQueryFailure
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case ErrKindProviderMissing:
		return "ProviderMissing"
	case ErrKindUserRejected:
		return "UserRejected"
	case ErrKindRequestPending:
		return "RequestAlreadyPending"
	case ErrKindQueryFailure:
		return "QueryFailure"
	default:
		return "Unknown"
	}
}

var (
	// ErrProviderMissing is returned when no provider is installed
	ErrProviderMissing = errors.New("wallet provider not detected")

	// ErrNoAccounts is returned when the provider approves a connection
	// without exposing any account
	ErrNoAccounts = errors.New("provider returned no accounts")
)

const fallbackErrorMessage = "An unexpected error occurred"

// ProviderError is a rejection carrying a provider code. It satisfies the
// same ErrorCode contract as go-ethereum's rpc.Error.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error %d", e.Code)
	}
	return e.Message
}

// ErrorCode returns the provider code
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// ConnectError is returned by ConnectWallet after the failure has been
// classified and reported to the notifier.
type ConnectError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *ConnectError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("connect failed: %s", e.Kind)
	}
	return fmt.Sprintf("connect failed: %s: %s", e.Kind, e.Message)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

type codedError interface {
	error
	ErrorCode() int
}

// Classify maps a prompting-request failure onto the error taxonomy.
// Errors without a code are Unknown.
func Classify(err error) *ConnectError {
	if errors.Is(err, ErrProviderMissing) {
		return &ConnectError{Kind: ErrKindProviderMissing, Err: err}
	}

	ce := &ConnectError{Kind: ErrKindUnknown, Err: err}
	if err != nil {
		ce.Message = err.Error()
	}

	var coded codedError
	if errors.As(err, &coded) {
		ce.Code = coded.ErrorCode()
		ce.Message = coded.Error()
		var pe *ProviderError
		if errors.As(err, &pe) {
			ce.Message = pe.Message
		}
		switch ce.Code {
		case CodeUserRejected:
			ce.Kind = ErrKindUserRejected
		case CodeRequestPending:
			ce.Kind = ErrKindRequestPending
		}
	}
	return ce
}

// Notification returns what the user sees for a classified failure
func (e *ConnectError) Notification(installURL string) Notification {
	switch e.Kind {
	case ErrKindProviderMissing:
		return providerMissingNotification(installURL)
	case ErrKindUserRejected:
		return Notification{
			Kind:        KindWarning,
			Title:       "Connection rejected",
			Description: "You rejected the wallet connection request",
		}
	case ErrKindRequestPending:
		return Notification{
			Kind:        KindWarning,
			Title:       "Connection pending",
			Description: "Please check MetaMask for a pending connection request",
		}
	default:
		desc := e.Message
		if desc == "" {
			desc = fallbackErrorMessage
		}
		return Notification{
			Kind:        KindError,
			Title:       "Failed to connect wallet",
			Description: desc,
		}
	}
}
