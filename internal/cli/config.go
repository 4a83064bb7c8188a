package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"walletconn/internal/config"
)

var (
	configShowOutput string
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage walletconn configuration",
	Long:  `View and modify walletconn configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE:  runConfigInit,
}

var configProviderCmd = &cobra.Command{
	Use:   "provider <url>",
	Short: "Set the wallet agent endpoint",
	Long: `Set the JSON-RPC endpoint of the wallet agent.

Examples:
  walletconn config provider http://127.0.0.1:8545
  walletconn config provider ws://127.0.0.1:8546
  walletconn config provider ""   # forget the provider`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigProvider,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in editor",
	RunE:  runConfigEdit,
}

func init() {
	configShowCmd.Flags().StringVarP(&configShowOutput, "output", "o", "text", "Output format (text, yaml)")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configProviderCmd)
	configCmd.AddCommand(configEditCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch configShowOutput {
	case "yaml":
		return writeYAML(cmd.OutOrStdout(), cfg)
	case "text":
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", configShowOutput)
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	url := cfg.Provider.URL
	if url == "" {
		url = "(none)"
	}

	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  config_file:   %s\n", cfg.ConfigPath)
	fmt.Fprintf(w, "  provider_url:  %s\n", url)
	fmt.Fprintf(w, "  poll_interval: %s\n", cfg.Provider.PollInterval)
	fmt.Fprintf(w, "  probe_timeout: %s\n", cfg.Provider.ProbeTimeout)
	fmt.Fprintf(w, "  install_url:   %s\n", cfg.Provider.InstallURL)
	fmt.Fprintf(w, "  log_level:     %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  log_file:      %s\n", cfg.Logging.File)
	fmt.Fprintln(w)

	if len(cfg.Networks) == 0 {
		fmt.Fprintln(w, "Networks: (none)")
		return
	}
	fmt.Fprintln(w, "Networks:")
	for _, n := range cfg.Networks {
		fmt.Fprintf(w, "  %s: %s\n", n.ChainID, n.Name)
	}
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfg.ConfigPath)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := os.Stat(cfg.ConfigPath); err == nil && !configInitForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", cfg.ConfigPath)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.ConfigPath)
	return nil
}

func runConfigProvider(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Provider.URL = args[0]
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if args[0] == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared wallet provider")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Wallet provider set to %s\n", args[0])
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}

	process, err := os.StartProcess("/usr/bin/env", []string{"env", editor, cfg.ConfigPath}, &proc)
	if err != nil {
		return fmt.Errorf("failed to start editor: %w", err)
	}

	_, err = process.Wait()
	return err
}
