// Package ledger provides read-only network clients used by the wallet store.
package ledger

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/quantumauth-io/wallet-store/internal/provider"
)

// AnyNetwork is the network reported by clients that follow the wallet.
const AnyNetwork = "any"

var ErrUnknownNetwork = errors.New("ledger: unknown network")

// Client is the query surface the store needs from a network client.
type Client interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Network() string
}

// balanceReader is satisfied by *ethclient.Client.
type balanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Web3Provider wraps an injected provider and follows whatever chain the
// wallet is on.
type Web3Provider struct {
	provider provider.Provider
	backend  balanceReader
}

var _ Client = (*Web3Provider)(nil)

func NewWeb3Provider(p provider.Provider) *Web3Provider {
	w := &Web3Provider{provider: p}
	if rp, ok := p.(*provider.RPCProvider); ok && rp.Client() != nil {
		w.backend = ethclient.NewClient(rp.Client())
	}
	return w
}

func (w *Web3Provider) Network() string { return AnyNetwork }

func (w *Web3Provider) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if w.backend != nil {
		bal, err := w.backend.BalanceAt(ctx, account, blockNumber)
		if err != nil {
			return nil, errors.Wrapf(err, "ledger: balance of %s", account.Hex())
		}
		return bal, nil
	}

	var out hexutil.Big
	if err := w.provider.Request(ctx, &out, provider.MethodGetBalance, account, blockArg(blockNumber)); err != nil {
		return nil, errors.Wrapf(err, "ledger: balance of %s", account.Hex())
	}
	return out.ToInt(), nil
}

// DefaultProvider is a read-only client pinned to a named public network.
type DefaultProvider struct {
	network string
	url     string
	client  *ethclient.Client
}

var _ Client = (*DefaultProvider)(nil)

// NewDefaultProvider dials the endpoint configured for network. HTTP
// endpoints connect lazily, on the first query.
func NewDefaultProvider(ctx context.Context, network string, endpoints map[string]string) (*DefaultProvider, error) {
	key := strings.ToLower(strings.TrimSpace(network))
	if key == "" {
		return nil, errors.Wrap(ErrUnknownNetwork, "empty network name")
	}

	url := strings.TrimSpace(lookup(endpoints, key))
	if url == "" {
		return nil, errors.Wrapf(ErrUnknownNetwork, "%q", network)
	}

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to connect to blockchain at %s", url)
	}

	return &DefaultProvider{
		network: key,
		url:     url,
		client:  client,
	}, nil
}

func (d *DefaultProvider) Network() string { return d.network }

func (d *DefaultProvider) URL() string { return d.url }

func (d *DefaultProvider) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	bal, err := d.client.BalanceAt(ctx, account, blockNumber)
	if err != nil {
		return nil, errors.Wrapf(err, "ledger: balance of %s on %s", account.Hex(), d.network)
	}
	return bal, nil
}

func (d *DefaultProvider) Close() {
	d.client.Close()
}

func lookup(endpoints map[string]string, key string) string {
	if u, ok := endpoints[key]; ok {
		return u
	}
	for name, u := range endpoints {
		if strings.EqualFold(name, key) {
			return u
		}
	}
	return ""
}

func blockArg(number *big.Int) string {
	if number == nil {
		return "latest"
	}
	return hexutil.EncodeBig(number)
}
