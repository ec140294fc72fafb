// Package store keeps the wallet connection state for application code.
package store

import (
	"context"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/wallet-store/internal/constants"
	"github.com/quantumauth-io/wallet-store/internal/ledger"
	"github.com/quantumauth-io/wallet-store/internal/networks"
	"github.com/quantumauth-io/wallet-store/internal/provider"
	"github.com/quantumauth-io/wallet-store/internal/units"
)

var (
	ErrNoProvider   = errors.New("store: no wallet provider injected")
	ErrNotConnected = errors.New("store: no connected account")
)

// Signer is an opaque handle able to authorize transactions for an account.
type Signer interface {
	Address() common.Address
}

type Options struct {
	// Provider is the injected wallet. Nil falls back to a read-only
	// client for DefaultNetwork.
	Provider provider.Provider

	DefaultNetwork string

	// Endpoints maps network names to public RPC urls.
	Endpoints map[string]string
}

// State is a point-in-time copy of the store fields.
type State struct {
	ChainID        string   `json:"chainId"`
	Network        string   `json:"network"`
	Accounts       []string `json:"accounts"`
	Balance        string   `json:"balance"`
	DefaultNetwork string   `json:"defaultNetwork"`
	IsInitialized  bool     `json:"isInitialized"`
}

// NetworkDetails is the outcome of RefreshNetworkDetails. ChainIDErr is the
// chain id failure, if any; ChainID and Network then hold the retained values.
type NetworkDetails struct {
	Address    string
	ChainID    string
	Network    string
	ChainIDErr error
}

type WalletStore struct {
	provider provider.Provider
	ledger   ledger.Client

	mu             sync.RWMutex
	chainID        string
	network        string
	accounts       []string
	balance        string
	defaultNetwork string
	isInitialized  bool
	signer         Signer
}

// New builds the store and picks its ledger client once. Later changes to
// the default network do not rebuild it.
func New(ctx context.Context, opts Options) (*WalletStore, error) {
	defaultNetwork := strings.TrimSpace(opts.DefaultNetwork)
	if defaultNetwork == "" {
		defaultNetwork = constants.DefaultNetwork
	}

	s := &WalletStore{
		provider:       opts.Provider,
		balance:        "0",
		defaultNetwork: defaultNetwork,
		accounts:       []string{},
	}

	client, err := s.getProvider(ctx, opts.Endpoints)
	if err != nil {
		return nil, err
	}
	s.ledger = client

	log.Info("wallet store ready",
		"injected", s.provider != nil,
		"ledger_network", client.Network(),
	)
	return s, nil
}

func (s *WalletStore) getProvider(ctx context.Context, endpoints map[string]string) (ledger.Client, error) {
	if s.provider != nil {
		return ledger.NewWeb3Provider(s.provider), nil
	}
	client, err := ledger.NewDefaultProvider(ctx, s.defaultNetwork, endpoints)
	if err != nil {
		return nil, errors.Wrap(err, "store: default provider")
	}
	return client, nil
}

// ConvertEthToWEI parses an ether decimal string into wei.
func (s *WalletStore) ConvertEthToWEI(amount string) (*big.Int, error) {
	return units.ParseEther(amount)
}

// ConvertWEIToETH formats a wei integer string as ether.
func (s *WalletStore) ConvertWEIToETH(amount string) (string, error) {
	return units.WeiToEther(amount)
}

func (s *WalletStore) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts) > 0
}

// IsMetaMaskConnected is an alias of IsConnected kept for wallet-named callers.
func (s *WalletStore) IsMetaMaskConnected() bool {
	return s.IsConnected()
}

// GetAddress returns the active account, or "" when disconnected.
func (s *WalletStore) GetAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.accounts) == 0 {
		return ""
	}
	return s.accounts[0]
}

// InitializeWeb3 turns off the provider's reload-on-network-change and loads
// accounts and chain id.
func (s *WalletStore) InitializeWeb3(ctx context.Context) (NetworkDetails, error) {
	if s.provider == nil {
		return NetworkDetails{}, ErrNoProvider
	}
	s.provider.SetAutoRefreshOnNetworkChange(false)
	return s.RefreshNetworkDetails(ctx)
}

// RefreshAccounts asks the wallet for account access. The wallet may block
// until the user answers its prompt.
func (s *WalletStore) RefreshAccounts(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}

	var accounts []string
	if err := s.provider.Request(ctx, &accounts, provider.MethodRequestAccounts); err != nil {
		return "", errors.Wrap(err, "store: refresh accounts")
	}
	if accounts == nil {
		accounts = []string{}
	}

	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()

	if len(accounts) == 0 {
		return "", nil
	}
	return accounts[0], nil
}

// RefreshChainID reloads the chain id and network label. On failure the
// previous values stay in place; the error is logged and returned.
func (s *WalletStore) RefreshChainID(ctx context.Context) error {
	if s.provider == nil {
		return ErrNoProvider
	}

	var chainID string
	if err := s.provider.Request(ctx, &chainID, provider.MethodChainID); err != nil {
		log.Error("refresh chain id failed", "error", err)
		return errors.Wrap(err, "store: refresh chain id")
	}

	s.setChain(chainID)
	return nil
}

// RefreshNetworkDetails refreshes accounts, then the chain id. An accounts
// failure is returned and the chain id is left alone; a chain id failure
// only shows up in NetworkDetails.ChainIDErr.
func (s *WalletStore) RefreshNetworkDetails(ctx context.Context) (NetworkDetails, error) {
	address, err := s.RefreshAccounts(ctx)
	if err != nil {
		return NetworkDetails{}, err
	}

	details := NetworkDetails{Address: address}
	details.ChainIDErr = s.RefreshChainID(ctx)

	s.mu.RLock()
	details.ChainID = s.chainID
	details.Network = s.network
	s.mu.RUnlock()

	return details, nil
}

// AccountBalance is a balance read together with the account it belongs to.
type AccountBalance struct {
	Address string
	Wei     *big.Int
	Ether   string
}

// GetCurrentBalance returns the wei balance of the active account.
func (s *WalletStore) GetCurrentBalance(ctx context.Context) (*big.Int, error) {
	_, wei, err := s.balanceOfActive(ctx)
	return wei, err
}

// RefreshBalance fetches the balance and caches it formatted in ether.
func (s *WalletStore) RefreshBalance(ctx context.Context) (string, error) {
	bal, err := s.RefreshAccountBalance(ctx)
	if err != nil {
		return "", err
	}
	return bal.Ether, nil
}

// RefreshAccountBalance is RefreshBalance that also reports which account
// was queried and the exact wei amount.
func (s *WalletStore) RefreshAccountBalance(ctx context.Context) (AccountBalance, error) {
	address, wei, err := s.balanceOfActive(ctx)
	if err != nil {
		return AccountBalance{}, err
	}

	formatted := units.FormatEther(wei)

	s.mu.Lock()
	s.balance = formatted
	s.mu.Unlock()

	return AccountBalance{Address: address, Wei: wei, Ether: formatted}, nil
}

func (s *WalletStore) balanceOfActive(ctx context.Context) (string, *big.Int, error) {
	address := s.GetAddress()
	if address == "" {
		return "", nil, ErrNotConnected
	}
	if !common.IsHexAddress(address) {
		return "", nil, errors.Newf("store: invalid account address %q", address)
	}

	bal, err := s.ledger.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", nil, errors.Wrap(err, "store: get balance")
	}
	return address, bal, nil
}

// ResetUser drops the accounts. Chain id, network and balance keep their
// last values.
func (s *WalletStore) ResetUser() {
	s.mu.Lock()
	s.accounts = []string{}
	s.mu.Unlock()
}

// SetDefaultNetwork records the fallback network name. The ledger client
// built in New is not replaced.
func (s *WalletStore) SetDefaultNetwork(name string) {
	s.mu.Lock()
	s.defaultNetwork = name
	s.mu.Unlock()
}

// Close releases the fallback ledger client, if the store built one. The
// injected provider belongs to the caller and is left open.
func (s *WalletStore) Close() {
	if c, ok := s.ledger.(interface{ Close() }); ok {
		c.Close()
	}
}

func (s *WalletStore) setChain(chainID string) {
	s.mu.Lock()
	s.chainID = chainID
	s.network = networks.Name(chainID)
	s.mu.Unlock()
}

func (s *WalletStore) setAccounts(accounts []string) {
	if accounts == nil {
		accounts = []string{}
	}
	s.mu.Lock()
	s.accounts = slices.Clone(accounts)
	s.mu.Unlock()
}
