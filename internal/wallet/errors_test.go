package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct {
	code int
	msg  string
}

func (e codedErr) Error() string  { return e.msg }
func (e codedErr) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantCode int
		wantMsg  string
	}{
		{"provider missing", ErrProviderMissing, ErrKindProviderMissing, 0, ""},
		{"user rejected", &ProviderError{Code: 4001, Message: "User rejected the request."}, ErrKindUserRejected, 4001, "User rejected the request."},
		{"pending", &ProviderError{Code: -32002}, ErrKindRequestPending, -32002, ""},
		{"wrapped rejection", fmt.Errorf("request accounts: %w", &ProviderError{Code: 4001}), ErrKindUserRejected, 4001, ""},
		{"foreign coded error", codedErr{code: -32002, msg: "already processing"}, ErrKindRequestPending, -32002, "already processing"},
		{"other code", &ProviderError{Code: -32603, Message: "internal"}, ErrKindUnknown, -32603, "internal"},
		{"no code", errors.New("boom"), ErrKindUnknown, 0, "boom"},
		{"context", context.DeadlineExceeded, ErrKindUnknown, 0, "context deadline exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := Classify(tt.err)
			assert.Equal(t, tt.wantKind, ce.Kind)
			assert.Equal(t, tt.wantCode, ce.Code)
			assert.Equal(t, tt.wantMsg, ce.Message)
			assert.ErrorIs(t, ce, tt.err)
		})
	}
}

func TestConnectErrorNotification(t *testing.T) {
	n := (&ConnectError{Kind: ErrKindProviderMissing}).Notification("https://example.test/install")
	assert.Equal(t, KindError, n.Kind)
	assert.Equal(t, "MetaMask not detected", n.Title)
	assert.Equal(t, "Please install MetaMask to connect your wallet", n.Description)
	if assert.NotNil(t, n.Action) {
		assert.Equal(t, "Install MetaMask", n.Action.Label)
		assert.Equal(t, "https://example.test/install", n.Action.URL)
	}

	n = (&ConnectError{Kind: ErrKindUnknown}).Notification("")
	assert.Equal(t, "An unexpected error occurred", n.Description)
	assert.Nil(t, n.Action)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "UserRejected", ErrKindUserRejected.String())
	assert.Equal(t, "RequestAlreadyPending", ErrKindRequestPending.String())
	assert.Equal(t, "QueryFailure", ErrKindQueryFailure.String())
	assert.Equal(t, "Unknown", ErrorKind(99).String())
}

func TestConnectErrorMessage(t *testing.T) {
	assert.Equal(t, "connect failed: UserRejected: nope", (&ConnectError{Kind: ErrKindUserRejected, Message: "nope"}).Error())
	assert.Equal(t, "connect failed: ProviderMissing", (&ConnectError{Kind: ErrKindProviderMissing}).Error())
	assert.Equal(t, "provider error 4001", (&ProviderError{Code: 4001}).Error())
}
