package ledgersdk

import (
	"context"
	"fmt"
	"net/http"
)

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	Type     string
	IsActive *bool
	Search   string
}

func (f CategoryFilter) values() query {
	q := query{}
	q.str("type", f.Type)
	q.boolean("is_active", f.IsActive)
	q.str("search", f.Search)
	return q
}

// Categories groups the category endpoints.
type Categories struct{ c *Client }

// Categories returns the category endpoints.
func (c *Client) Categories() *Categories { return &Categories{c: c} }

func (cs *Categories) List(ctx context.Context, f CategoryFilter) Envelope[Page[Category]] {
	return call[Page[Category]](ctx, cs.c, "categories_list", "/categories/",
		RequestOptions{Query: f.values().values()}, "Failed to fetch categories", false)
}

func (cs *Categories) Get(ctx context.Context, id int64) Envelope[Category] {
	return call[Category](ctx, cs.c, "categories_get", fmt.Sprintf("/categories/%d/", id),
		RequestOptions{}, "Failed to fetch category", false)
}

func (cs *Categories) Create(ctx context.Context, in CategoryInput) Envelope[Category] {
	return call[Category](ctx, cs.c, "categories_create", "/categories/",
		RequestOptions{Method: http.MethodPost, Body: in}, "Failed to create category", true)
}

func (cs *Categories) Update(ctx context.Context, id int64, in CategoryInput) Envelope[Category] {
	return call[Category](ctx, cs.c, "categories_update", fmt.Sprintf("/categories/%d/", id),
		RequestOptions{Method: http.MethodPut, Body: in}, "Failed to update category", true)
}

func (cs *Categories) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, cs.c, "categories_delete", fmt.Sprintf("/categories/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete category", false)
}
