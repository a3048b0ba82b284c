// internal/providers/provider.go
package providers

import (
	"context"

	"bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"
)

// SendRequest carries one composed message to a provider adapter. Exactly one
// of the channel-specific body sets is populated.
type SendRequest struct {
	To       string // phone number or email address
	Body     string // SMS text, or email plain-text part
	Subject  string // email only
	HTMLBody string // email only

	// Attempt identity, echoed back by vendor status callbacks so the
	// webhook handlers can settle the right ledger record.
	AlertID     string
	RecipientID string
}

// SendResult is the synchronous acceptance outcome of a send. Actual delivery
// confirmation arrives out of band.
type SendResult struct {
	Accepted    bool
	ProviderRef string
	Err         error
}

// Provider is the uniform boundary wrapping one external vendor's transport
// for one channel. An adapter with missing credentials must refuse the send
// locally with a PROVIDER_UNCONFIGURED error rather than attempting the call.
type Provider interface {
	Name() string
	Channel() string // "sms" or "email"
	Configured() bool
	Send(ctx context.Context, req SendRequest) SendResult
}

// unconfigured builds the refusal result shared by all adapters.
func unconfigured(name, details string) SendResult {
	return SendResult{
		Accepted: false,
		Err:      errors.NewProviderUnconfiguredError(name, details),
	}
}

// transportFailure builds the rejection result for a reachable vendor.
func transportFailure(name string, err error) SendResult {
	return SendResult{
		Accepted: false,
		Err:      errors.NewProviderTransportError(name, err),
	}
}

// Registry holds the ranked provider chain per channel: the configured
// preferred adapter first, then the fallback. Adding a vendor means adding an
// adapter, not new branch logic in the coordinator.
type Registry struct {
	chains map[string][]Provider
	logger logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		chains: make(map[string][]Provider),
		logger: log,
	}
}

// Register appends providers to a channel's chain in preference order.
func (r *Registry) Register(channel string, provs ...Provider) {
	for _, p := range provs {
		if p == nil {
			continue
		}
		if p.Channel() != channel {
			r.logger.Warn("provider registered on wrong channel", map[string]interface{}{
				"provider":        p.Name(),
				"providerChannel": p.Channel(),
				"channel":         channel,
			})
			continue
		}
		r.chains[channel] = append(r.chains[channel], p)
	}
}

// ChainFor returns the ranked providers for a channel. Empty when no vendor
// is registered for it.
func (r *Registry) ChainFor(channel string) []Provider {
	return r.chains[channel]
}

// Channels returns the channels with at least one registered provider.
func (r *Registry) Channels() []string {
	out := make([]string, 0, len(r.chains))
	for _, ch := range []string{models.ChannelSMS, models.ChannelEmail} {
		if len(r.chains[ch]) > 0 {
			out = append(out, ch)
		}
	}
	return out
}
