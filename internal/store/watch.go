package store

import (
	"context"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/wallet-store/internal/provider"
)

// Watch applies provider events to the store until ctx is done or the
// subscription fails. It returns nil on ctx cancellation.
func (s *WalletStore) Watch(ctx context.Context) error {
	if s.provider == nil {
		return ErrNoProvider
	}

	events := make(chan provider.Event, 16)
	sub := s.provider.Subscribe(events)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case ev := <-events:
			s.apply(ev)
		}
	}
}

func (s *WalletStore) apply(ev provider.Event) {
	switch ev.Kind {
	case provider.EventAccountsChanged:
		s.setAccounts(ev.Accounts)
		log.Info("accounts changed", "count", len(ev.Accounts))
	case provider.EventChainChanged, provider.EventConnect:
		if ev.ChainID != "" {
			s.setChain(ev.ChainID)
			log.Info("chain changed", "chain_id", ev.ChainID, "network", s.Network())
		}
	case provider.EventDisconnect:
		s.ResetUser()
		log.Warn("wallet provider disconnected")
	}
}
