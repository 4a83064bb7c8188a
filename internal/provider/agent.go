package provider

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"walletconn/internal/wallet"
)

// Agent is a minimal wallet agent: it holds a set of accounts and grants
// them to clients that ask. It backs `walletconn agent` and the tests.
type Agent struct {
	mu         sync.Mutex
	accounts   []string
	chainID    string
	authorized bool
	pending    bool

	// Prompt decides a connection request. A nil Prompt approves. Returning
	// an error rejects the request with that error.
	Prompt func(ctx context.Context) error
}

// NewAgent creates an agent on chainID holding accounts
func NewAgent(chainID string, accounts ...string) *Agent {
	return &Agent{chainID: chainID, accounts: accounts}
}

// SetAccounts replaces the held accounts, first one active
func (a *Agent) SetAccounts(accounts ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts = accounts
}

// SetChainID switches the agent's chain
func (a *Agent) SetChainID(chainID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chainID = chainID
}

// Authorize grants or revokes the client's permission without a prompt
func (a *Agent) Authorize(ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authorized = ok
}

// Authorized reports whether the client holds a permission grant
func (a *Agent) Authorized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authorized
}

// Server returns a go-ethereum rpc server exposing the agent under the eth
// namespace
func (a *Agent) Server() (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &agentService{a: a}); err != nil {
		return nil, err
	}
	return srv, nil
}

func (a *Agent) visibleAccounts() []string {
	if !a.authorized {
		return []string{}
	}
	out := make([]string, len(a.accounts))
	copy(out, a.accounts)
	return out
}

// agentService carries only the RPC surface so the Agent setters are not
// registered as methods
type agentService struct {
	a *Agent
}

// Accounts serves eth_accounts
func (s *agentService) Accounts() []string {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	return s.a.visibleAccounts()
}

// ChainId serves eth_chainId
func (s *agentService) ChainId() string {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	return s.a.chainID
}

// RequestAccounts serves eth_requestAccounts
func (s *agentService) RequestAccounts(ctx context.Context) ([]string, error) {
	a := s.a
	a.mu.Lock()
	if a.pending {
		a.mu.Unlock()
		return nil, &wallet.ProviderError{
			Code:    wallet.CodeRequestPending,
			Message: "Already processing eth_requestAccounts. Please wait.",
		}
	}
	if a.authorized {
		accounts := a.visibleAccounts()
		a.mu.Unlock()
		return accounts, nil
	}
	a.pending = true
	prompt := a.Prompt
	a.mu.Unlock()

	var err error
	if prompt != nil {
		err = prompt(ctx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = false
	if err != nil {
		return nil, err
	}
	a.authorized = true
	return a.visibleAccounts(), nil
}

// Rejected is the error a Prompt returns when the user declines
func Rejected() error {
	return &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected the request."}
}
