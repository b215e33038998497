package ledgersdk

import (
	"context"
	"fmt"
	"net/http"
)

// Alerts groups the pending alert endpoints.
type Alerts struct{ c *Client }

// Alerts returns the alert endpoints.
func (c *Client) Alerts() *Alerts { return &Alerts{c: c} }

func (a *Alerts) List(ctx context.Context) Envelope[[]Alert] {
	return call[[]Alert](ctx, a.c, "alerts_list", "/alerts/",
		RequestOptions{}, "Failed to fetch alerts", false)
}

func (a *Alerts) Count(ctx context.Context) Envelope[AlertCount] {
	return call[AlertCount](ctx, a.c, "alerts_count", "/alerts/count/",
		RequestOptions{}, "Failed to fetch alert count", false)
}

func (a *Alerts) Dismiss(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, a.c, "alerts_dismiss", fmt.Sprintf("/alerts/%d/dismiss/", id),
		RequestOptions{Method: http.MethodPost}, "Failed to dismiss alert", false)
}
