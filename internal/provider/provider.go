// Package provider describes the wallet capability consumed by the store and
// ships an adapter over a JSON-RPC wallet endpoint.
package provider

import (
	"context"

	"github.com/ethereum/go-ethereum/event"
)

const (
	MethodChainID         = "eth_chainId"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodGetBalance      = "eth_getBalance"
)

type EventKind string

const (
	EventConnect         EventKind = "connect"
	EventDisconnect      EventKind = "disconnect"
	EventAccountsChanged EventKind = "accountsChanged"
	EventChainChanged    EventKind = "chainChanged"
)

// Event is a provider notification. Only the field matching Kind is set.
type Event struct {
	Kind     EventKind
	Accounts []string
	ChainID  string
}

// Provider is an injected wallet: request/response calls, the
// reload-on-network-change flag, and event notifications.
type Provider interface {
	// Request performs method with params and decodes the JSON result into
	// result. A nil result discards it.
	Request(ctx context.Context, result any, method string, params ...any) error

	SetAutoRefreshOnNetworkChange(enabled bool)

	Subscribe(ch chan<- Event) event.Subscription
}
