// Package mercadopago implements the checkout provider against the
// Mercado Pago preferences API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carnefacil/carnefacil/internal/config"
	paymentdomain "github.com/carnefacil/carnefacil/internal/payment/domain"
)

const preferencesPath = "/checkout/preferences"

type Provider struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func New(cfg config.Config) *Provider {
	return &Provider{
		baseURL:     strings.TrimRight(cfg.MercadoPago.BaseURL, "/"),
		accessToken: cfg.MercadoPago.AccessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *Provider) Name() string { return "mercadopago" }

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []preferenceItem   `json:"items"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	ExternalReference string             `json:"external_reference"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

func (p *Provider) CreatePreference(ctx context.Context, req paymentdomain.PreferenceRequest) (*paymentdomain.Preference, error) {
	body := preferenceRequest{
		Items: []preferenceItem{{
			Title:      req.Title,
			Quantity:   1,
			CurrencyID: req.Currency,
			UnitPrice:  float64(req.Amount) / 100,
		}},
		BackURLs: preferenceBackURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn:        "approved",
		ExternalReference: req.ExternalReference,
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+preferencesPath, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: preference creation returned %d", paymentdomain.ErrProvider, resp.StatusCode)
	}

	var pref preferenceResponse
	if err := json.Unmarshal(raw, &pref); err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrProvider, err)
	}
	if pref.ID == "" || pref.InitPoint == "" {
		return nil, fmt.Errorf("%w: preference response missing id or init_point", paymentdomain.ErrProvider)
	}

	return &paymentdomain.Preference{
		ID:        pref.ID,
		InitPoint: pref.InitPoint,
		Raw:       raw,
	}, nil
}
