package provider

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// RPCProvider is a Provider backed by a wallet JSON-RPC endpoint (http or ws).
//
// Endpoints do not push EIP-1193 events over plain JSON-RPC, so RPCProvider
// derives them by polling. Request results update what the provider last
// saw but never emit: the caller already has them.
type RPCProvider struct {
	client *rpc.Client
	url    string

	autoRefresh atomic.Bool
	feed        event.Feed

	mu        sync.Mutex
	connected bool
	chainID   string
	accounts  []string
	closed    bool
}

var _ Provider = (*RPCProvider)(nil)

func Dial(ctx context.Context, url string) (*RPCProvider, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("provider: missing url")
	}

	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "provider: dial %s", url)
	}

	p := NewRPCProvider(client)
	p.url = url
	return p, nil
}

func NewRPCProvider(client *rpc.Client) *RPCProvider {
	p := &RPCProvider{client: client}
	p.autoRefresh.Store(true)
	return p
}

// Client exposes the underlying rpc client so ledger clients can share it.
func (p *RPCProvider) Client() *rpc.Client { return p.client }

func (p *RPCProvider) URL() string { return p.url }

func (p *RPCProvider) Request(ctx context.Context, result any, method string, params ...any) error {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return errors.Wrapf(err, "provider: %s", method)
	}

	p.record(method, raw)

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return errors.Wrapf(err, "provider: decode %s result", method)
	}
	return nil
}

// Poll asks the wallet for its chain id and accounts and emits an event for
// each change since the last answer, whether that came from Poll or Request.
func (p *RPCProvider) Poll(ctx context.Context) error {
	var chainID string
	if err := p.client.CallContext(ctx, &chainID, MethodChainID); err != nil {
		return errors.Wrapf(err, "provider: poll %s", MethodChainID)
	}
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, MethodAccounts); err != nil {
		return errors.Wrapf(err, "provider: poll %s", MethodAccounts)
	}

	events := p.observeChainID(chainID)
	events = append(events, p.observeAccounts(accounts)...)
	for _, ev := range events {
		p.feed.Send(ev)
	}
	return nil
}

// PollEvery runs Poll on each tick until ctx is done.
func (p *RPCProvider) PollEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				log.Warn("provider poll failed", "error", err)
			}
		}
	}
}

func (p *RPCProvider) SetAutoRefreshOnNetworkChange(enabled bool) {
	p.autoRefresh.Store(enabled)
}

func (p *RPCProvider) AutoRefreshOnNetworkChange() bool {
	return p.autoRefresh.Load()
}

func (p *RPCProvider) Subscribe(ch chan<- Event) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Close releases the rpc client and notifies subscribers with a disconnect.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	wasConnected := p.connected
	p.connected = false
	p.mu.Unlock()

	p.client.Close()
	if wasConnected {
		p.feed.Send(Event{Kind: EventDisconnect})
	}
}

func (p *RPCProvider) record(method string, raw json.RawMessage) {
	switch method {
	case MethodChainID:
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			p.observeChainID(id)
		}

	case MethodAccounts, MethodRequestAccounts:
		var accounts []string
		if err := json.Unmarshal(raw, &accounts); err == nil {
			p.observeAccounts(accounts)
		}
	}
}

// observeChainID stores id and returns the events it implies.
func (p *RPCProvider) observeChainID(id string) []Event {
	p.mu.Lock()
	prev := p.chainID
	first := !p.connected
	p.chainID = id
	p.connected = true
	p.mu.Unlock()

	switch {
	case first:
		return []Event{{Kind: EventConnect, ChainID: id}}
	case !strings.EqualFold(prev, id):
		log.Info("provider chain changed", "from", prev, "to", id, "auto_refresh", p.autoRefresh.Load())
		return []Event{{Kind: EventChainChanged, ChainID: id}}
	}
	return nil
}

func (p *RPCProvider) observeAccounts(accounts []string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.EqualFunc(p.accounts, accounts, strings.EqualFold) {
		return nil
	}
	p.accounts = slices.Clone(accounts)
	return []Event{{Kind: EventAccountsChanged, Accounts: slices.Clone(accounts)}}
}
