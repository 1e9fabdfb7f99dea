package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cinetix/internal/shared/apperrors"
	"cinetix/internal/shared/config"
)

// Provider statuses as reported by the hosted checkout API.
const (
	providerStatusOpen     = "open"
	providerStatusApproved = "approved"
	providerStatusDeclined = "declined"
	providerStatusExpired  = "expired"
)

type CreateSessionRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Reference   string  `json:"reference"`
	RedirectURL string  `json:"redirect_url,omitempty"`
	WebhookURL  string  `json:"webhook_url,omitempty"`
}

type ProviderSession struct {
	PaymentID   string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

type ProviderPayment struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// ProviderClient is the payment collaborator: create a hosted checkout
// session, and fetch a payment by the provider's id.
type ProviderClient interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*ProviderSession, error)
	GetPayment(ctx context.Context, externalID string) (*ProviderPayment, error)
}

type httpProviderClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewProviderClient(cfg config.PaymentConfig) ProviderClient {
	return &httpProviderClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (p *httpProviderClient) CreateSession(ctx context.Context, req CreateSessionRequest) (*ProviderSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Upstream("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream("payment provider rejected the session",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBodyPreview(resp.Body)))
	}

	var session ProviderSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperrors.Upstream("invalid payment provider response", err)
	}
	return &session, nil
}

func (p *httpProviderClient) GetPayment(ctx context.Context, externalID string) (*ProviderPayment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/payments/"+externalID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Upstream("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream("payment provider lookup failed",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBodyPreview(resp.Body)))
	}

	var payment ProviderPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, apperrors.Upstream("invalid payment provider response", err)
	}
	return &payment, nil
}

func (p *httpProviderClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
}

func readBodyPreview(r io.Reader) string {
	preview, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(preview)
}

// statusFromProvider maps provider statuses onto our payment states.
func statusFromProvider(status string) PaymentStatus {
	switch status {
	case providerStatusApproved:
		return PaymentApproved
	case providerStatusDeclined:
		return PaymentDeclined
	case providerStatusExpired:
		return PaymentExpired
	default:
		return PaymentCreated
	}
}
