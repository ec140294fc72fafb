package ledger

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/wallet-store/internal/provider"
	"github.com/quantumauth-io/wallet-store/internal/provider/providertest"
)

var alice = common.HexToAddress("0x1111111111111111111111111111111111111111")

func oneEther() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}

func TestWeb3Provider_RequestBackend(t *testing.T) {
	w := providertest.NewWallet("0x1", alice.Hex())
	w.SetBalance(alice.Hex(), oneEther())

	client := NewWeb3Provider(providertest.NewFake(w))
	assert.Equal(t, AnyNetwork, client.Network())

	bal, err := client.BalanceAt(context.Background(), alice, nil)
	require.NoError(t, err)
	assert.Zero(t, oneEther().Cmp(bal))
	assert.Equal(t, 1, w.Calls(provider.MethodGetBalance))
}

func TestWeb3Provider_EthclientBackend(t *testing.T) {
	w := providertest.NewWallet("0x1", alice.Hex())
	w.SetBalance(alice.Hex(), big.NewInt(42))

	rpcClient, closeFn, err := providertest.DialInProc(w)
	require.NoError(t, err)
	defer closeFn()

	client := NewWeb3Provider(provider.NewRPCProvider(rpcClient))
	require.NotNil(t, client.backend)

	bal, err := client.BalanceAt(context.Background(), alice, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())
}

func TestWeb3Provider_Error(t *testing.T) {
	w := providertest.NewWallet("0x1", alice.Hex())
	w.Set(func(w *providertest.Wallet) { w.BalanceErr = assert.AnError })

	_, err := NewWeb3Provider(providertest.NewFake(w)).BalanceAt(context.Background(), alice, nil)
	require.ErrorIs(t, err, assert.AnError)
}

func TestNewDefaultProvider(t *testing.T) {
	ctx := context.Background()
	endpoints := map[string]string{"mainnet": "http://127.0.0.1:1"}

	d, err := NewDefaultProvider(ctx, "Mainnet", endpoints)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, "mainnet", d.Network())
	assert.Equal(t, "http://127.0.0.1:1", d.URL())

	_, err = NewDefaultProvider(ctx, "ropsten", endpoints)
	require.ErrorIs(t, err, ErrUnknownNetwork)

	_, err = NewDefaultProvider(ctx, "", endpoints)
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestDefaultProvider_BalanceOverHTTP(t *testing.T) {
	w := providertest.NewWallet("0x1")
	w.SetBalance(alice.Hex(), big.NewInt(7))

	srv, err := providertest.NewServer(w)
	require.NoError(t, err)
	defer srv.Stop()

	hs := httptest.NewServer(srv)
	defer hs.Close()

	d, err := NewDefaultProvider(context.Background(), "mainnet", map[string]string{"mainnet": hs.URL})
	require.NoError(t, err)
	defer d.Close()

	bal, err := d.BalanceAt(context.Background(), alice, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), bal.Int64())
}

func TestBlockArg(t *testing.T) {
	assert.Equal(t, "latest", blockArg(nil))
	assert.Equal(t, "0x10", blockArg(big.NewInt(16)))
}
