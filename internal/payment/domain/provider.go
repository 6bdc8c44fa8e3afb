package domain

import "context"

// PreferenceRequest is what the checkout provider needs to build a
// hosted payment page.
type PreferenceRequest struct {
	Title             string
	Amount            int64 // cents
	Currency          string
	ExternalReference string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
}

// Preference is the provider's answer: where to send the buyer.
type Preference struct {
	ID        string
	InitPoint string
	Raw       []byte
}

type Provider interface {
	Name() string
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}
