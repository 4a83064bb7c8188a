package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"walletconn/internal/provider"
	"walletconn/internal/wallet"
)

const testAccount = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

// serveAgent exposes agent over HTTP and writes a config file pointing at it
func serveAgent(t *testing.T, agent *provider.Agent) string {
	t.Helper()
	srv, err := agent.Server()
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
	})
	return writeConfig(t, ts.URL)
}

func writeConfig(t *testing.T, url string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[provider]\nurl = \"" + url + "\"\npoll_interval = \"0s\"\nprobe_timeout = \"2s\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStatus_ReportsAuthorizedAccount(t *testing.T) {
	agent := provider.NewAgent("0x89", testAccount)
	agent.Authorize(true)
	path := serveAgent(t, agent)

	out, err := execute(t, "status", "-o", "yaml", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "provider: true")
	assert.Contains(t, out, "status: connected")
	assert.Contains(t, out, "account: "+testAccount)
	assert.Contains(t, out, "network: Polygon")
}

func TestStatus_WithoutGrantShowsChainOnly(t *testing.T) {
	path := serveAgent(t, provider.NewAgent("0xaa36a7", testAccount))

	out, err := execute(t, "status", "-o", "text", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Status: disconnected")
	assert.Contains(t, out, "Network: Sepolia (0xaa36a7)")
	assert.NotContains(t, out, "Account:")
}

func TestStatus_WithoutProvider(t *testing.T) {
	out, err := execute(t, "status", "-o", "text", "--config", writeConfig(t, ""))
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: not detected")
}

func TestStatus_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "status", "-o", "json", "--config", writeConfig(t, ""))
	assert.ErrorContains(t, err, `unknown output format "json"`)
}

func TestConnect_Approved(t *testing.T) {
	agent := provider.NewAgent("0x1", testAccount)
	path := serveAgent(t, agent)

	out, err := execute(t, "connect", "--open=false", "--timeout", "5s", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Wallet connected successfully")
	assert.Contains(t, out, "Account: "+testAccount)
	assert.True(t, agent.Authorized())
}

func TestConnect_Rejected(t *testing.T) {
	agent := provider.NewAgent("0x1", testAccount)
	agent.Prompt = func(context.Context) error { return provider.Rejected() }
	path := serveAgent(t, agent)

	out, err := execute(t, "connect", "--open=false", "--timeout", "5s", "--config", path)
	require.Error(t, err)

	var ce *wallet.ConnectError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, wallet.ErrKindUserRejected, ce.Kind)
	assert.Contains(t, out, "Connection rejected")
}

func TestConnect_WithoutProviderPrintsInstallLink(t *testing.T) {
	out, err := execute(t, "connect", "--open=false", "--timeout", "5s", "--config", writeConfig(t, ""))
	require.Error(t, err)

	assert.Contains(t, out, "MetaMask not detected")
	assert.Contains(t, out, "Install MetaMask: https://metamask.io/download/")
}

func TestConfig_ProviderAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "config", "provider", "http://127.0.0.1:9545", "--config", path)
	require.NoError(t, err)

	out, err := execute(t, "config", "show", "-o", "yaml", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "url: http://127.0.0.1:9545")

	out, err = execute(t, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestConfig_InitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "config", "init", "--force=false", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--force=false", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--force", "--config", path)
	assert.NoError(t, err)
}

func TestFormatNotification(t *testing.T) {
	line := formatNotification(wallet.Notification{
		Kind:        wallet.KindError,
		Title:       "MetaMask not detected",
		Description: "Please install MetaMask to connect your wallet",
		Action:      &wallet.Action{Label: "Install MetaMask", URL: "https://example.com"},
	})
	assert.Contains(t, line, "✗ MetaMask not detected")
	assert.Contains(t, line, "Please install MetaMask")
	assert.Contains(t, line, "\n  Install MetaMask: https://example.com")
}

func TestAgentConsole_Commands(t *testing.T) {
	agent := provider.NewAgent("0x1", testAccount)
	var out bytes.Buffer
	con := newAgentConsole(agent, &out)

	con.handle("grant")
	assert.True(t, agent.Authorized())

	con.handle("chain 0x89")
	con.handle("account 0xB0B")
	con.handle("revoke")
	con.handle("bogus")
	con.handle("   ")

	assert.False(t, agent.Authorized())
	assert.Contains(t, out.String(), "Chain: 0x89")
	assert.Contains(t, out.String(), "Accounts: 0xB0B")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestAgentConsole_Prompt(t *testing.T) {
	tests := []struct {
		answer  string
		approve bool
	}{
		{"y", true},
		{"YES", true},
		{"n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			con := newAgentConsole(provider.NewAgent("0x1"), &bytes.Buffer{})
			done := make(chan error, 1)
			go func() { done <- con.prompt(context.Background()) }()

			require.Eventually(t, func() bool {
				con.mu.Lock()
				defer con.mu.Unlock()
				return con.waiting != nil
			}, time.Second, 5*time.Millisecond)
			con.handle(tt.answer)

			err := <-done
			if tt.approve {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, wallet.ErrKindUserRejected, wallet.Classify(err).Kind)
		})
	}
}

func TestAgentConsole_PromptCancelled(t *testing.T) {
	con := newAgentConsole(provider.NewAgent("0x1"), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := con.prompt(ctx)
	assert.Equal(t, wallet.ErrKindUserRejected, wallet.Classify(err).Kind)

	con.mu.Lock()
	defer con.mu.Unlock()
	assert.Nil(t, con.waiting)
}
