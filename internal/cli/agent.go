package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"walletconn/internal/provider"
)

var (
	agentListen   string
	agentChain    string
	agentAccounts []string
	agentApprove  bool
	agentReject   bool
	agentGranted  bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run a local wallet agent",
	Long: `Serve a minimal wallet agent over JSON-RPC (HTTP on / and WebSocket on /ws).

By default every connection request is confirmed on the console. Lines typed
while no request is waiting change the agent:

  account <addr> [addr...]   replace the accounts, first one active
  chain <id>                 switch network, e.g. chain 0x89
  revoke                     drop the connection grant
  grant                      grant access without a request

Examples:
  walletconn agent --account 0x71C7656EC7ab88b098defB751B7401B5f6d8976F
  walletconn agent --listen 127.0.0.1:9545 --chain 0xaa36a7 --approve --account 0xabc...`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().StringVar(&agentListen, "listen", "127.0.0.1:8545", "Address to listen on")
	agentCmd.Flags().StringVar(&agentChain, "chain", "0x1", "Chain id reported by the agent")
	agentCmd.Flags().StringSliceVar(&agentAccounts, "account", nil, "Account to hold, repeatable")
	agentCmd.Flags().BoolVar(&agentApprove, "approve", false, "Approve every connection request")
	agentCmd.Flags().BoolVar(&agentReject, "reject", false, "Reject every connection request")
	agentCmd.Flags().BoolVar(&agentGranted, "granted", false, "Start with access already granted")
	agentCmd.MarkFlagsMutuallyExclusive("approve", "reject")
	_ = agentCmd.MarkFlagRequired("account")
}

func runAgent(cmd *cobra.Command, args []string) error {
	agent := provider.NewAgent(agentChain, agentAccounts...)
	agent.Authorize(agentGranted)

	out := cmd.OutOrStdout()
	con := newAgentConsole(agent, out)
	switch {
	case agentApprove:
		agent.Prompt = nil
	case agentReject:
		agent.Prompt = func(context.Context) error { return provider.Rejected() }
	default:
		agent.Prompt = con.prompt
	}

	srv, err := agent.Server()
	if err != nil {
		return fmt.Errorf("failed to create agent server: %w", err)
	}
	defer srv.Stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", srv.WebsocketHandler([]string{"*"}))
	mux.Handle("/", srv)

	ln, err := net.Listen("tcp", agentListen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", agentListen, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	fmt.Fprintf(out, "Wallet agent listening on http://%s (ws://%s/ws)\n", ln.Addr(), ln.Addr())
	fmt.Fprintf(out, "Chain %s, accounts %s\n", agentChain, strings.Join(agentAccounts, ", "))
	go con.run(ctx, cmd.InOrStdin())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("agent server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// agentConsole reads operator input. A line answers the waiting connection
// request if there is one, otherwise it is parsed as a command.
type agentConsole struct {
	agent *provider.Agent
	out   io.Writer

	mu      sync.Mutex
	waiting chan string
}

func newAgentConsole(agent *provider.Agent, out io.Writer) *agentConsole {
	return &agentConsole{agent: agent, out: out}
}

func (c *agentConsole) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		c.handle(scanner.Text())
	}
}

func (c *agentConsole) prompt(ctx context.Context) error {
	ch := make(chan string, 1)
	c.mu.Lock()
	c.waiting = ch
	c.mu.Unlock()

	fmt.Fprint(c.out, "Connection request received. Approve? [y/N] ")

	select {
	case answer := <-ch:
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			fmt.Fprintln(c.out, "Approved")
			return nil
		}
		fmt.Fprintln(c.out, "Rejected")
		return provider.Rejected()
	case <-ctx.Done():
		c.mu.Lock()
		if c.waiting == ch {
			c.waiting = nil
		}
		c.mu.Unlock()
		return provider.Rejected()
	}
}

func (c *agentConsole) handle(line string) {
	c.mu.Lock()
	ch := c.waiting
	c.waiting = nil
	c.mu.Unlock()
	if ch != nil {
		ch <- line
		return
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "account", "accounts":
		c.agent.SetAccounts(fields[1:]...)
		fmt.Fprintf(c.out, "Accounts: %s\n", strings.Join(fields[1:], ", "))
	case "chain":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: chain <id>")
			return
		}
		c.agent.SetChainID(fields[1])
		fmt.Fprintf(c.out, "Chain: %s\n", fields[1])
	case "revoke":
		c.agent.Authorize(false)
		fmt.Fprintln(c.out, "Access revoked")
	case "grant":
		c.agent.Authorize(true)
		fmt.Fprintln(c.out, "Access granted")
	default:
		fmt.Fprintf(c.out, "unknown command %q\n", fields[0])
	}
}
