package provider

import (
	"context"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"walletconn/internal/wallet"
)

// watcher turns changes observed by polling into pushed events. The first
// successful observation is the baseline and emits nothing.
type watcher struct {
	client  *Client
	limiter *rate.Limiter
	log     logrus.FieldLogger

	observed bool
	accounts []wallet.Address
	chainID  string
}

func newWatcher(c *Client, interval time.Duration, log logrus.FieldLogger) *watcher {
	return &watcher{
		client:  c,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     log.WithField("interval", interval),
	}
}

func (w *watcher) run(ctx context.Context) {
	w.log.Debug("provider watcher started")
	defer w.log.Debug("provider watcher stopped")

	for {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		w.poll(ctx)
	}
}

func (w *watcher) poll(ctx context.Context) {
	var raw []string
	if err := w.client.Request(ctx, &raw, wallet.MethodAccounts); err != nil {
		if ctx.Err() == nil {
			w.log.WithError(err).Debug("failed to poll accounts")
		}
		return
	}
	var chainHex string
	if err := w.client.Request(ctx, &chainHex, wallet.MethodChainID); err != nil {
		if ctx.Err() == nil {
			w.log.WithError(err).Debug("failed to poll chain id")
		}
		return
	}

	accounts := wallet.ParseAccounts(raw)
	chainID := NormalizeChainID(chainHex)

	if !w.observed {
		w.observed = true
		w.accounts = accounts
		w.chainID = chainID
		return
	}

	if !slices.Equal(accounts, w.accounts) {
		w.accounts = accounts
		n := w.client.emitter.send(wallet.AccountsChanged{Accounts: accounts})
		w.log.WithFields(logrus.Fields{"accounts": len(accounts), "subscribers": n}).Debug("accounts changed")
	}
	if chainID != w.chainID {
		w.chainID = chainID
		n := w.client.emitter.send(wallet.ChainChanged{ChainID: chainID})
		w.log.WithFields(logrus.Fields{"chain": chainID, "subscribers": n}).Debug("chain changed")
	}
}

// NormalizeChainID returns the canonical hex form of a chain id so that
// "0x01" and "0x1" compare equal. Values that are not hex quantities are
// returned unchanged.
func NormalizeChainID(s string) string {
	digits, ok := strings.CutPrefix(strings.ToLower(s), "0x")
	if !ok || digits == "" {
		return s
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return s
	}
	return hexutil.EncodeBig(n)
}
