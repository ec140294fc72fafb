package store

import "slices"

func (s *WalletStore) ChainID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chainID
}

func (s *WalletStore) Network() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network
}

// Accounts returns a copy of the authorized accounts, active one first.
func (s *WalletStore) Accounts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts)
}

// Balance is the last fetched balance in ether, "0" until RefreshBalance runs.
func (s *WalletStore) Balance() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

func (s *WalletStore) DefaultNetwork() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultNetwork
}

// LedgerNetwork is the network the ledger client was built for at New.
func (s *WalletStore) LedgerNetwork() string {
	return s.ledger.Network()
}

// HasProvider reports whether a wallet provider was injected.
func (s *WalletStore) HasProvider() bool {
	return s.provider != nil
}

// IsInitialized is owned by application code; the store never flips it.
func (s *WalletStore) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isInitialized
}

func (s *WalletStore) SetInitialized(v bool) {
	s.mu.Lock()
	s.isInitialized = v
	s.mu.Unlock()
}

func (s *WalletStore) Signer() (Signer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signer, s.signer != nil
}

func (s *WalletStore) SetSigner(signer Signer) {
	s.mu.Lock()
	s.signer = signer
	s.mu.Unlock()
}

func (s *WalletStore) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		ChainID:        s.chainID,
		Network:        s.network,
		Accounts:       slices.Clone(s.accounts),
		Balance:        s.balance,
		DefaultNetwork: s.defaultNetwork,
		IsInitialized:  s.isInitialized,
	}
}
