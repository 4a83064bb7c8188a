package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"walletconn/internal/wallet"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet connection status",
	Long: `Probe the wallet agent and report the account it already exposes,
without asking for access.

Examples:
  walletconn status
  walletconn status -o yaml`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "Output format (text, yaml)")
}

// statusReport is the machine readable form of `walletconn status`
type statusReport struct {
	Provider bool   `yaml:"provider"`
	URL      string `yaml:"url,omitempty"`
	Status   string `yaml:"status"`
	Account  string `yaml:"account,omitempty"`
	ChainID  string `yaml:"chain_id,omitempty"`
	Network  string `yaml:"network,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusOutput != "text" && statusOutput != "yaml" {
		return fmt.Errorf("unknown output format %q", statusOutput)
	}

	s, err := newSession()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer s.Close()

	p := s.detect(cmd.Context())
	ctrl := wallet.NewController(p, wallet.Options{Logger: s.log})
	ctrl.Initialize(cmd.Context())
	defer ctrl.Teardown()

	report := buildStatusReport(ctrl.State(), ctrl.HasProvider(), s.cfg.Provider.URL, s.cfg.NetworkName)
	if ctrl.HasProvider() && report.ChainID == "" {
		var chainID string
		if err := p.Request(cmd.Context(), &chainID, wallet.MethodChainID); err == nil {
			report.ChainID = chainID
			report.Network = s.cfg.NetworkName(chainID)
		}
	}

	if statusOutput == "yaml" {
		return writeYAML(cmd.OutOrStdout(), report)
	}
	printStatus(cmd.OutOrStdout(), report)
	return nil
}

func buildStatusReport(st wallet.State, hasProvider bool, url string, networkName func(string) string) statusReport {
	r := statusReport{
		Provider: hasProvider,
		Status:   st.Status().String(),
		ChainID:  st.ChainID,
	}
	if hasProvider {
		r.URL = url
	}
	if !st.Account.IsZero() {
		r.Account = st.Account.String()
	}
	if r.ChainID != "" {
		r.Network = networkName(r.ChainID)
	}
	return r
}

func printStatus(w io.Writer, r statusReport) {
	if !r.Provider {
		fmt.Fprintln(w, "Provider: not detected")
		fmt.Fprintln(w, "\nSet provider.url in the config file or WALLETCONN_PROVIDER_URL to point at a wallet agent")
		return
	}
	fmt.Fprintf(w, "Provider: %s\n", r.URL)
	fmt.Fprintf(w, "Status: %s\n", r.Status)
	if r.Account != "" {
		fmt.Fprintf(w, "Account: %s\n", r.Account)
	}
	if r.ChainID != "" {
		fmt.Fprintf(w, "Network: %s (%s)\n", r.Network, r.ChainID)
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
