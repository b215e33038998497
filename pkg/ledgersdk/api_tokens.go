package ledgersdk

import (
	"context"
	"fmt"
	"net/http"
)

// APITokens groups the scripted-access token endpoints.
type APITokens struct{ c *Client }

// APITokens returns the API token endpoints.
func (c *Client) APITokens() *APITokens { return &APITokens{c: c} }

func (t *APITokens) List(ctx context.Context) Envelope[[]APIToken] {
	return call[[]APIToken](ctx, t.c, "api_tokens_list", "/auth/tokens/",
		RequestOptions{}, "Failed to fetch tokens", false)
}

// Create issues a new token. The secret is only returned here.
func (t *APITokens) Create(ctx context.Context, name string) Envelope[APIToken] {
	return call[APIToken](ctx, t.c, "api_tokens_create", "/auth/tokens/create/",
		RequestOptions{Method: http.MethodPost, Body: map[string]string{"name": name}}, "Failed to create token", true)
}

func (t *APITokens) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, t.c, "api_tokens_delete", fmt.Sprintf("/auth/tokens/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete token", false)
}
