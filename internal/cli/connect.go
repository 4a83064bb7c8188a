package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"walletconn/internal/tui/styles"
	"walletconn/internal/wallet"
)

var (
	connectTimeout time.Duration
	connectOpen    bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Request wallet access without the TUI",
	Long: `Ask the wallet agent for account access and print the result.

The command waits until the request is approved or rejected in the wallet.
When no wallet agent is available the install page link is printed, and
with --open it is opened in the browser.

Examples:
  walletconn connect
  walletconn connect --timeout 2m --open`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().DurationVar(&connectTimeout, "timeout", 5*time.Minute, "How long to wait for approval")
	connectCmd.Flags().BoolVar(&connectOpen, "open", false, "Open the install page when no wallet is detected")
}

// printNotifier writes each notification as one styled line
type printNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printNotifier) Notify(n wallet.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, formatNotification(n))
}

func formatNotification(n wallet.Notification) string {
	title := n.Title
	switch n.Kind {
	case wallet.KindSuccess:
		title = styles.SuccessMsg.Render("✓ " + n.Title)
	case wallet.KindInfo:
		title = styles.InfoMsg.Render("ℹ " + n.Title)
	case wallet.KindWarning:
		title = styles.WarningMsg.Render("⚠ " + n.Title)
	case wallet.KindError:
		title = styles.ErrorMsg.Render("✗ " + n.Title)
	}

	line := title
	if n.Description != "" {
		line += "  " + n.Description
	}
	if n.Action != nil {
		line += "\n  " + n.Action.Label + ": " + n.Action.URL
	}
	return line
}

func runConnect(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()

	opts := wallet.Options{
		Notifier:   &printNotifier{w: cmd.OutOrStdout()},
		Logger:     s.log,
		InstallURL: s.cfg.Provider.InstallURL,
		// Chain changes are not acted on by a one-shot command
		OnReload: func(string) {},
	}
	if connectOpen {
		opts.Opener = browser.OpenURL
	}

	ctrl := wallet.NewController(s.detect(ctx), opts)
	ctrl.Initialize(ctx)
	defer ctrl.Teardown()

	if st := ctrl.State(); !st.Account.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Already connected: %s\n", st.Account)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render("Waiting for approval in your wallet..."))
	err = ctrl.ConnectWallet(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "Account: %s\n", ctrl.State().Account)
		return nil
	case errors.Is(err, wallet.ErrNoAccounts):
		return errors.New("wallet approved the request without exposing an account")
	}

	var ce *wallet.ConnectError
	if errors.As(err, &ce) && ce.Kind == wallet.ErrKindProviderMissing && connectOpen {
		ctrl.OpenInstallPage()
	}
	return err
}
