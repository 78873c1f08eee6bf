package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/httpclient"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
)

const webhookTimeout = 10 * time.Second

// WebhookNotifier posts the finished report to a configured endpoint when
// the run found any ranked opportunities. Delivery failure is logged and
// swallowed; it never affects the written report.
type WebhookNotifier struct {
	client httpclient.Client
	url    string
	logger logger.LoggerInterface
}

// NewWebhookNotifier creates a notifier for the given URL.
func NewWebhookNotifier(url string, timeout time.Duration, log logger.LoggerInterface) (*WebhookNotifier, error) {
	if timeout == 0 {
		timeout = webhookTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("webhook"),
		httpclient.WithRequestTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook client: %w", err)
	}

	return &WebhookNotifier{client: client, url: url, logger: log}, nil
}

// Notify posts the report once. No-op when the top list is empty.
func (n *WebhookNotifier) Notify(ctx context.Context, report *domain.ScanReport) error {
	if len(report.Top) == 0 {
		return nil
	}

	resp, err := n.client.NewRequest().
		SetBody(report).
		Post(ctx, n.url)
	if err != nil {
		n.logger.Warn(ctx, "webhook delivery failed", "url", n.url, "error", err)
		return apperror.New(apperror.CodeWebhookDeliveryFailed, apperror.WithCause(err))
	}
	if resp.IsError() {
		n.logger.Warn(ctx, "webhook rejected report", "url", n.url, "status", resp.StatusCode)
		return apperror.New(apperror.CodeWebhookDeliveryFailed,
			apperror.WithStatusCode(resp.StatusCode))
	}

	n.logger.Info(ctx, "webhook delivered", "candidates", len(report.Top))
	return nil
}
