package cli

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"walletconn/internal/tui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "walletconn",
	Short: "Connect a crypto wallet from the terminal",
	Long: `walletconn connects to a MetaMask-style wallet agent over JSON-RPC.

Running it without a subcommand opens the connect screen, where you can
request account access, watch account and network changes, copy the
connected address and disconnect.

The wallet agent endpoint is read from provider.url in
~/.walletconn/config.toml or from WALLETCONN_PROVIDER_URL.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		defer s.Close()

		// The browser helper echoes the child's output, which would
		// corrupt the alt screen.
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard

		return tui.Run(tui.Options{
			Provider:    s.detect(cmd.Context()),
			InstallURL:  s.cfg.Provider.InstallURL,
			Logger:      s.log,
			Detect:      s.detect,
			NetworkName: s.cfg.NetworkName,
		})
	},
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.walletconn/config.toml)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(agentCmd)
}
