package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"walletconn/internal/wallet"
)

const (
	alice = "0xAAAA000000000000000000000000000000000001"
	bob   = "0xBBBB000000000000000000000000000000000002"
)

func startAgent(t *testing.T, agent *Agent, opts Options) *Client {
	t.Helper()
	srv, err := agent.Server()
	require.NoError(t, err)
	t.Cleanup(srv.Stop)

	c := NewClient(rpc.DialInProc(srv), "inproc", opts)
	t.Cleanup(c.Close)
	return c
}

type eventLog struct {
	mu     sync.Mutex
	events []wallet.Event
}

func (l *eventLog) record(ev wallet.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []wallet.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]wallet.Event(nil), l.events...)
}

func TestClient_RequestAccounts(t *testing.T) {
	agent := NewAgent("0x1", alice, bob)
	c := startAgent(t, agent, Options{})
	ctx := context.Background()

	var accounts []string
	require.NoError(t, c.Request(ctx, &accounts, wallet.MethodAccounts))
	assert.Empty(t, accounts, "nothing visible before authorization")

	require.NoError(t, c.Request(ctx, &accounts, wallet.MethodRequestAccounts))
	assert.Equal(t, []string{alice, bob}, accounts)
	assert.True(t, agent.Authorized())

	require.NoError(t, c.Request(ctx, &accounts, wallet.MethodAccounts))
	assert.Equal(t, []string{alice, bob}, accounts)

	var chainID string
	require.NoError(t, c.Request(ctx, &chainID, wallet.MethodChainID))
	assert.Equal(t, "0x1", chainID)
}

func TestClient_ErrorCodesSurviveTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want wallet.ErrorKind
	}{
		{"rejected", Rejected(), wallet.ErrKindUserRejected},
		{"pending", &wallet.ProviderError{Code: wallet.CodeRequestPending, Message: "busy"}, wallet.ErrKindRequestPending},
		{"other", errors.New("agent crashed"), wallet.ErrKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewAgent("0x1", alice)
			agent.Prompt = func(context.Context) error { return tt.err }
			c := startAgent(t, agent, Options{})

			var accounts []string
			err := c.Request(context.Background(), &accounts, wallet.MethodRequestAccounts)
			require.Error(t, err)

			var rpcErr rpc.Error
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, tt.want, wallet.Classify(err).Kind)
			assert.False(t, agent.Authorized())
		})
	}
}

func TestClient_SecondRequestWhilePromptingIsPending(t *testing.T) {
	agent := NewAgent("0x1", alice)
	release := make(chan struct{})
	entered := make(chan struct{})
	agent.Prompt = func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}
	c := startAgent(t, agent, Options{})

	done := make(chan error, 1)
	go func() {
		var accounts []string
		done <- c.Request(context.Background(), &accounts, wallet.MethodRequestAccounts)
	}()
	<-entered

	var accounts []string
	err := c.Request(context.Background(), &accounts, wallet.MethodRequestAccounts)
	assert.Equal(t, wallet.ErrKindRequestPending, wallet.Classify(err).Kind)

	close(release)
	require.NoError(t, <-done)
}

func TestClient_ControllerEndToEnd(t *testing.T) {
	agent := NewAgent("0x89", alice)
	c := startAgent(t, agent, Options{})

	var titles []string
	var mu sync.Mutex
	ctrl := wallet.NewController(c, wallet.Options{
		Notifier: wallet.NotifierFunc(func(n wallet.Notification) {
			mu.Lock()
			defer mu.Unlock()
			titles = append(titles, n.Title)
		}),
	})
	t.Cleanup(ctrl.Teardown)

	ctrl.Initialize(context.Background())
	assert.Equal(t, wallet.StatusDisconnected, ctrl.Status())
	assert.Equal(t, "0x89", ctrl.State().ChainID)

	require.NoError(t, ctrl.ConnectWallet(context.Background()))
	assert.Equal(t, wallet.Address(alice), ctrl.State().Account)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Wallet connected successfully"}, titles)
}

func TestDetect(t *testing.T) {
	_, err := Detect(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Detect(context.Background(), "http://127.0.0.1:1", Options{ProbeTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := startAgent(t, NewAgent("0x1"), Options{PollInterval: 5 * time.Millisecond})
	c.Close()
	c.Close()
}

func TestEmitter_UnsubscribeStopsDelivery(t *testing.T) {
	e := newEmitter()
	var log eventLog
	sub := e.subscribe(wallet.EventAccountsChanged, log.record)

	assert.Equal(t, 1, e.send(wallet.AccountsChanged{Accounts: []wallet.Address{alice}}))
	require.Eventually(t, func() bool { return len(log.all()) == 1 }, time.Second, 5*time.Millisecond)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Zero(t, e.send(wallet.AccountsChanged{}))
	assert.Zero(t, e.send(wallet.ChainChanged{ChainID: "0x1"}), "chain feed has no subscribers")
}
