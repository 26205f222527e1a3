package payments

import (
	"fmt"
	"sync"

	"agrotech/utils"
)

// Intent is the gateway's handle for an in-progress charge.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"clientSecret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"` // minor units of Currency
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

const IntentSucceeded = "succeeded"

// Gateway is the slice of the payment provider API the service consumes.
type Gateway interface {
	CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*Intent, error)
	RetrievePaymentIntent(id string) (*Intent, error)
}

// LocalGateway fakes the provider for development: every intent it creates
// is immediately in the succeeded state, so the confirm flow can be walked
// end to end without provider credentials.
type LocalGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
}

func NewLocalGateway() *LocalGateway {
	return &LocalGateway{intents: make(map[string]*Intent)}
}

func (g *LocalGateway) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}

	id := "pi_" + utils.GenerateRandomString(16)
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + utils.GenerateRandomString(12),
		Status:       IntentSucceeded,
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}

	g.mu.Lock()
	g.intents[id] = intent
	g.mu.Unlock()
	return intent, nil
}

func (g *LocalGateway) RetrievePaymentIntent(id string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent: %s", id)
	}
	return intent, nil
}
