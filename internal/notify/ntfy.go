package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultNtfyServer = "https://ntfy.sh"

	// ntfy batches show at most this many slot lines before truncating.
	ntfyBatchLineLimit = 10
)

// NtfyNotifier implements Notifier by publishing plain-text messages to an
// ntfy.sh topic. Anyone subscribed to the topic receives a push.
type NtfyNotifier struct {
	server string
	topic  string
	client *http.Client
}

// NtfyOption configures an NtfyNotifier.
type NtfyOption func(*NtfyNotifier)

// WithNtfyServer overrides the default ntfy.sh server, for self-hosted
// instances and tests.
func WithNtfyServer(server string) NtfyOption {
	return func(n *NtfyNotifier) {
		n.server = strings.TrimRight(server, "/")
	}
}

// WithNtfyHTTPClient sets a custom HTTP client.
func WithNtfyHTTPClient(c *http.Client) NtfyOption {
	return func(n *NtfyNotifier) {
		n.client = c
	}
}

// NewNtfyNotifier creates a notifier publishing to the given topic.
func NewNtfyNotifier(topic string, opts ...NtfyOption) *NtfyNotifier {
	n := &NtfyNotifier{
		server: defaultNtfyServer,
		topic:  topic,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SendAlert publishes a single slot alert to the topic.
func (n *NtfyNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	return n.publish(ctx, buildMessage(alert))
}

// SendBatchAlert publishes one message listing several openings at a location.
func (n *NtfyNotifier) SendBatchAlert(
	ctx context.Context,
	alerts []AlertPayload,
	locationName string,
) error {
	if len(alerts) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 %d Global Entry appointments available!\nLocation: %s\n", len(alerts), locationName)

	limit := min(len(alerts), ntfyBatchLineLimit)
	for i := range limit {
		fmt.Fprintf(&b, "%s %s\n", alerts[i].Date, alerts[i].Time)
	}
	if len(alerts) > ntfyBatchLineLimit {
		fmt.Fprintf(&b, "... and %d more", len(alerts)-ntfyBatchLineLimit)
	}

	return n.publish(ctx, strings.TrimRight(b.String(), "\n"))
}

func buildMessage(alert *AlertPayload) string {
	if alert.Test {
		return fmt.Sprintf(
			"🧪 Test Notification\nLocation: %s\nDate: %s\nTime: %s",
			alert.LocationName, alert.Date, alert.Time,
		)
	}
	return fmt.Sprintf(
		"🎉 Global Entry Appointment Available!\nLocation: %s\nDate: %s\nTime: %s",
		alert.LocationName, alert.Date, alert.Time,
	)
}

func (n *NtfyNotifier) publish(ctx context.Context, message string) error {
	url := n.server + "/" + n.topic

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		strings.NewReader(message),
	)
	if err != nil {
		return fmt.Errorf("creating ntfy request: %w", err)
	}

	req.Header.Set("Title", "Global Entry Alert")
	req.Header.Set("Priority", "urgent")
	req.Header.Set("Tags", "calendar")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("publishing to ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("ntfy returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, body)
	}

	return nil
}
