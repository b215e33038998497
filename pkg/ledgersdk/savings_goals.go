package ledgersdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SavingsGoalFilter narrows a savings goal listing.
type SavingsGoalFilter struct {
	Status string
	Search string
}

func (f SavingsGoalFilter) values() query {
	q := query{}
	q.str("status", f.Status)
	q.str("search", f.Search)
	return q
}

// SavingsGoals groups the savings goal endpoints.
type SavingsGoals struct{ c *Client }

// SavingsGoals returns the savings goal endpoints.
func (c *Client) SavingsGoals() *SavingsGoals { return &SavingsGoals{c: c} }

func (s *SavingsGoals) List(ctx context.Context, f SavingsGoalFilter) Envelope[Page[SavingsGoal]] {
	return call[Page[SavingsGoal]](ctx, s.c, "savings_goals_list", "/savings-goals/",
		RequestOptions{Query: f.values().values()}, "Failed to fetch savings goals", false)
}

func (s *SavingsGoals) Get(ctx context.Context, id int64) Envelope[SavingsGoal] {
	return call[SavingsGoal](ctx, s.c, "savings_goals_get", fmt.Sprintf("/savings-goals/%d/", id),
		RequestOptions{}, "Failed to fetch savings goal", false)
}

func (s *SavingsGoals) Create(ctx context.Context, in SavingsGoalInput) Envelope[SavingsGoal] {
	return call[SavingsGoal](ctx, s.c, "savings_goals_create", "/savings-goals/",
		RequestOptions{Method: http.MethodPost, Body: in}, "Failed to create savings goal", true)
}

func (s *SavingsGoals) Update(ctx context.Context, id int64, in SavingsGoalInput) Envelope[SavingsGoal] {
	return call[SavingsGoal](ctx, s.c, "savings_goals_update", fmt.Sprintf("/savings-goals/%d/", id),
		RequestOptions{Method: http.MethodPut, Body: in}, "Failed to update savings goal", true)
}

func (s *SavingsGoals) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, s.c, "savings_goals_delete", fmt.Sprintf("/savings-goals/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete savings goal", false)
}

// CreateBudget creates a budget that saves towards goal id.
func (s *SavingsGoals) CreateBudget(ctx context.Context, id int64) Envelope[json.RawMessage] {
	return call[json.RawMessage](ctx, s.c, "savings_goals_create_budget", fmt.Sprintf("/savings-goals/%d/create_budget/", id),
		RequestOptions{Method: http.MethodPost}, "Failed to create budget from goal", false)
}
