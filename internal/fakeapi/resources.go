package fakeapi

import (
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
)

func resourceKey(userID int64, name string) string {
	return fmt.Sprintf("%d:%s", userID, name)
}

// Seed stores item in the named collection of username and returns its
// id. name is the URL segment, such as "accounts" or "alerts"; API tokens
// live under "tokens".
func (s *Server) Seed(username, name string, item map[string]any) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[username]
	if u == nil {
		return 0
	}
	return s.seedLocked(u.ID, name, item)
}

func (s *Server) seedLocked(userID int64, name string, item map[string]any) int64 {
	s.nextID++
	stored := maps.Clone(item)
	stored["id"] = s.nextID
	key := resourceKey(userID, name)
	s.resources[key] = append(s.resources[key], stored)
	return s.nextID
}

func (s *Server) items(userID int64, name string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.resources[resourceKey(userID, name)]
	out := make([]map[string]any, 0, len(src))
	for _, it := range src {
		out = append(out, maps.Clone(it))
	}
	return out
}

// matches applies exact-match query filters to an item. Pagination and
// free-text parameters are ignored.
func matches(item map[string]any, r *http.Request) bool {
	for key, vals := range r.URL.Query() {
		switch key {
		case "page", "search", "ordering", "start_date", "end_date":
			continue
		}
		v, ok := item[key]
		if !ok {
			continue
		}
		if fmt.Sprint(v) != vals[0] {
			return false
		}
	}
	return true
}

func (s *Server) handleList(name string, paginated bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		var results []map[string]any
		for _, it := range s.items(u.ID, name) {
			if name == "alerts" && it["seen"] == true {
				continue
			}
			if matches(it, r) {
				results = append(results, it)
			}
		}
		if results == nil {
			results = []map[string]any{}
		}

		if !paginated {
			writeJSON(w, http.StatusOK, results)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":    len(results),
			"next":     nil,
			"previous": nil,
			"results":  results,
		})
	}
}

func (s *Server) find(userID int64, name, rawID string) (int, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, false
	}
	for i, it := range s.resources[resourceKey(userID, name)] {
		if it["id"] == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) handleGet(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		s.mu.Lock()
		i, ok := s.find(u.ID, name, r.PathValue("id"))
		var item map[string]any
		if ok {
			item = maps.Clone(s.resources[resourceKey(u.ID, name)][i])
		}
		s.mu.Unlock()

		if !ok {
			writeDetail(w, http.StatusNotFound, "No "+strings.TrimSuffix(name, "s")+" matches the given query.")
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleDelete(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		key := resourceKey(u.ID, name)

		s.mu.Lock()
		i, ok := s.find(u.ID, name, r.PathValue("id"))
		if ok {
			s.resources[key] = append(s.resources[key][:i], s.resources[key][i+1:]...)
		}
		s.mu.Unlock()

		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := readJSON(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}

	fields := map[string][]string{}
	for _, f := range []string{"name", "account_type", "currency"} {
		if v, _ := body[f].(string); v == "" {
			fields[f] = []string{"This field is required."}
		}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	if _, ok := body["balance"]; !ok {
		body["balance"] = "0.00"
	}
	body["is_active"] = true

	u := currentUser(r)
	s.mu.Lock()
	id := s.seedLocked(u.ID, "accounts", body)
	s.mu.Unlock()

	body["id"] = id
	writeJSON(w, http.StatusCreated, body)
}

func amount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func (s *Server) handleAccountSummary(w http.ResponseWriter, r *http.Request) {
	type currencySummary struct {
		Total  float64            `json:"total"`
		Count  int                `json:"count"`
		ByType map[string]float64 `json:"by_type"`
	}

	summary := map[string]*currencySummary{}
	for _, it := range s.items(currentUser(r).ID, "accounts") {
		if it["is_active"] == false {
			continue
		}
		cur := fmt.Sprint(it["currency"])
		cs := summary[cur]
		if cs == nil {
			cs = &currencySummary{ByType: map[string]float64{}}
			summary[cur] = cs
		}
		bal := amount(it["balance"])
		cs.Total += bal
		cs.Count++
		cs.ByType[fmt.Sprint(it["account_type"])] += bal
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTransactionStats(w http.ResponseWriter, r *http.Request) {
	type total struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}
	totals := map[string]*total{"income": {}, "expense": {}, "transfer": {}}

	q := r.URL.Query()
	for _, it := range s.items(currentUser(r).ID, "transactions") {
		date := fmt.Sprint(it["date"])
		if start := q.Get("start_date"); start != "" && date < start {
			continue
		}
		if end := q.Get("end_date"); end != "" && date > end {
			continue
		}
		if t := totals[fmt.Sprint(it["type"])]; t != nil {
			t.Total += amount(it["amount"])
			t.Count++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"income":   totals["income"],
		"expense":  totals["expense"],
		"transfer": totals["transfer"],
		"net":      totals["income"].Total - totals["expense"].Total,
	})
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	var count int
	var total, spent float64
	for _, it := range s.items(currentUser(r).ID, "budgets") {
		if it["is_active"] == false {
			continue
		}
		count++
		total += amount(it["amount"])
		spent += amount(it["spent_amount"])
	}

	pct := 0.0
	if total > 0 {
		pct = spent / total * 100
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_budgets":     count,
		"total_amount":      total,
		"total_spent":       spent,
		"total_remaining":   total - spent,
		"over_budget_count": 0,
		"alert_count":       0,
		"percentage_used":   pct,
	})
}

func (s *Server) handleAlertCount(w http.ResponseWriter, r *http.Request) {
	n := 0
	for _, it := range s.items(currentUser(r).ID, "alerts") {
		if it["seen"] != true {
			n++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleAlertDismiss(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.mu.Lock()
	i, ok := s.find(u.ID, "alerts", r.PathValue("id"))
	if ok {
		s.resources[resourceKey(u.ID, "alerts")][i]["seen"] = true
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (s *Server) handleCreateAPIToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeFieldErrors(w, map[string][]string{"name": {"This field is required."}})
		return
	}

	u := currentUser(r)
	secret := randomChallenge()

	s.mu.Lock()
	created := s.clock().UTC()
	id := s.seedLocked(u.ID, "tokens", map[string]any{
		"name":       req.Name,
		"created_at": created,
		"last_used":  nil,
		"is_active":  true,
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         id,
		"name":       req.Name,
		"token":      secret,
		"created_at": created,
		"last_used":  nil,
		"is_active":  true,
	})
}
