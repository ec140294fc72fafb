// Package providertest holds in-memory wallets for tests: a Fake Provider and
// an in-process JSON-RPC wallet endpoint.
package providertest

import (
	"context"
	"encoding/json"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/quantumauth-io/wallet-store/internal/provider"
)

var ErrUserRejected = errors.New("user rejected the request")

// Wallet is the mutable state behind both Fake and the rpc service.
type Wallet struct {
	mu sync.Mutex

	Accounts []string
	ChainID  string
	Balances map[string]*big.Int

	AccountsErr error
	ChainIDErr  error
	BalanceErr  error

	calls map[string]int
}

func NewWallet(chainID string, accounts ...string) *Wallet {
	return &Wallet{
		Accounts: accounts,
		ChainID:  chainID,
		Balances: map[string]*big.Int{},
		calls:    map[string]int{},
	}
}

func (w *Wallet) SetBalance(account string, wei *big.Int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Balances[strings.ToLower(account)] = wei
}

func (w *Wallet) Set(fn func(w *Wallet)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w)
}

// Calls reports how many times method was requested.
func (w *Wallet) Calls(method string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls[method]
}

func (w *Wallet) handle(method string, params []any) (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls[method]++

	switch method {
	case provider.MethodChainID:
		if w.ChainIDErr != nil {
			return nil, w.ChainIDErr
		}
		return w.ChainID, nil

	case provider.MethodRequestAccounts, provider.MethodAccounts:
		if w.AccountsErr != nil {
			return nil, w.AccountsErr
		}
		return slices.Clone(w.Accounts), nil

	case provider.MethodGetBalance:
		if w.BalanceErr != nil {
			return nil, w.BalanceErr
		}
		if len(params) == 0 {
			return nil, errors.New("missing address")
		}
		addr, _ := params[0].(string)
		bal := w.Balances[strings.ToLower(addr)]
		if bal == nil {
			bal = new(big.Int)
		}
		return (*hexutil.Big)(bal), nil
	}
	return nil, errors.Newf("method %s not supported", method)
}

// Fake is an in-memory provider.Provider.
type Fake struct {
	*Wallet

	feed        event.Feed
	mu          sync.Mutex
	autoRefresh bool
	autoSet     bool
}

var _ provider.Provider = (*Fake)(nil)

func NewFake(w *Wallet) *Fake {
	return &Fake{Wallet: w, autoRefresh: true}
}

func (f *Fake) Request(ctx context.Context, result any, method string, params ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// addresses arrive as common.Address; normalise to strings like the wire would
	norm := make([]any, len(params))
	for i, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		norm[i] = v
	}

	out, err := f.handle(method, norm)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, result)
}

func (f *Fake) SetAutoRefreshOnNetworkChange(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoRefresh = enabled
	f.autoSet = true
}

// AutoRefresh reports the flag and whether it was ever set.
func (f *Fake) AutoRefresh() (enabled bool, set bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoRefresh, f.autoSet
}

func (f *Fake) Subscribe(ch chan<- provider.Event) event.Subscription {
	return f.feed.Subscribe(ch)
}

// Emit pushes ev to subscribers and returns how many received it.
func (f *Fake) Emit(ev provider.Event) int {
	return f.feed.Send(ev)
}

// walletService exposes Wallet under the "eth" namespace.
type walletService struct {
	w *Wallet
}

func (s *walletService) ChainId() (string, error) {
	out, err := s.w.handle(provider.MethodChainID, nil)
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (s *walletService) RequestAccounts() ([]string, error) {
	out, err := s.w.handle(provider.MethodRequestAccounts, nil)
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

func (s *walletService) Accounts() ([]string, error) {
	out, err := s.w.handle(provider.MethodAccounts, nil)
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

func (s *walletService) GetBalance(addr string, block string) (*hexutil.Big, error) {
	out, err := s.w.handle(provider.MethodGetBalance, []any{addr, block})
	if err != nil {
		return nil, err
	}
	return out.(*hexutil.Big), nil
}

// NewServer returns an rpc server answering the wallet methods from w.
func NewServer(w *Wallet) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &walletService{w: w}); err != nil {
		return nil, err
	}
	return srv, nil
}

// DialInProc starts an rpc server for w and returns a connected client.
func DialInProc(w *Wallet) (*rpc.Client, func(), error) {
	srv, err := NewServer(w)
	if err != nil {
		return nil, nil, err
	}
	client := rpc.DialInProc(srv)
	return client, func() {
		client.Close()
		srv.Stop()
	}, nil
}
