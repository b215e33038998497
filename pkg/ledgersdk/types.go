package ledgersdk

import (
	"encoding/json"
	"time"
)

// User is the authenticated identity returned by /auth/me/.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"date_joined"`
}

// TokenPair is the token response of login, registration and passkey
// authentication. User is set by the endpoints that embed it.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// refreshResponse carries a new refresh token only when the backend rotates
// them.
type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload. Password2 defaults to
// Password when empty.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// WebAuthnCredential is a registered passkey reference. The key material
// itself never leaves the authenticator. LastUsed is nil until the passkey
// has signed a user in.
type WebAuthnCredential struct {
	ID           int64      `json:"id"`
	CredentialID string     `json:"credential_id"`
	DeviceName   string     `json:"device_name,omitempty"`
	Counter      uint32     `json:"counter"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used"`
}

// PasskeyRegistration is the server's answer to a completed registration.
// CredentialID is the stored record's id, the one Passkeys.Delete takes,
// not the authenticator's credential id.
type PasskeyRegistration struct {
	Message      string `json:"message"`
	CredentialID int64  `json:"credential_id"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Account is a money container such as a bank account or a wallet.
// Monetary amounts are decimal strings.
type Account struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	AccountType        string    `json:"account_type"`
	AccountTypeDisplay string    `json:"account_type_display,omitempty"`
	Balance            string    `json:"balance"`
	Currency           string    `json:"currency"`
	Description        string    `json:"description,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AccountInput is the writable subset of an account. Nil fields are left
// untouched by a partial update.
type AccountInput struct {
	Name        *string `json:"name,omitempty"`
	AccountType *string `json:"account_type,omitempty"`
	Balance     *string `json:"balance,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CurrencySummary aggregates accounts of one currency.
type CurrencySummary struct {
	Total  float64            `json:"total"`
	Count  int                `json:"count"`
	ByType map[string]float64 `json:"by_type"`
}

// AccountSummary is keyed by currency code.
type AccountSummary map[string]CurrencySummary

// Category classifies transactions.
type Category struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Icon           string    `json:"icon"`
	Color          string    `json:"color"`
	Type           string    `json:"type"`
	TypeDisplay    string    `json:"type_display,omitempty"`
	ParentCategory *int64    `json:"parent_category,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryInput is the writable subset of a category.
type CategoryInput struct {
	Name           string `json:"name"`
	Icon           string `json:"icon,omitempty"`
	Color          string `json:"color,omitempty"`
	Type           string `json:"type"`
	ParentCategory *int64 `json:"parent_category,omitempty"`
	IsActive       *bool  `json:"is_active,omitempty"`
}

// Transaction is a single income, expense or transfer.
type Transaction struct {
	ID                  int64     `json:"id"`
	Account             int64     `json:"account"`
	Category            *int64    `json:"category"`
	Type                string    `json:"type"`
	TypeDisplay         string    `json:"type_display,omitempty"`
	Amount              string    `json:"amount"`
	Description         string    `json:"description"`
	Date                string    `json:"date"`
	Notes               *string   `json:"notes,omitempty"`
	DestinationAccount  *int64    `json:"destination_account,omitempty"`
	IsRecurring         bool      `json:"is_recurring"`
	RecurrenceFrequency *string   `json:"recurrence_frequency,omitempty"`
	RecurrenceInterval  int       `json:"recurrence_interval"`
	RecurrenceEndDate   *string   `json:"recurrence_end_date,omitempty"`
	Source              string    `json:"source,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TransactionInput is the writable subset of a transaction.
type TransactionInput struct {
	Account             int64   `json:"account"`
	Category            *int64  `json:"category,omitempty"`
	Type                string  `json:"type"`
	Amount              string  `json:"amount"`
	Description         string  `json:"description"`
	Date                string  `json:"date"`
	Notes               *string `json:"notes,omitempty"`
	DestinationAccount  *int64  `json:"destination_account,omitempty"`
	IsRecurring         bool    `json:"is_recurring"`
	RecurrenceFrequency *string `json:"recurrence_frequency,omitempty"`
	RecurrenceInterval  int     `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate   *string `json:"recurrence_end_date,omitempty"`
}

// TypeTotal is a sum and count for one transaction type.
type TypeTotal struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// TransactionStats summarises transactions over a date range.
type TransactionStats struct {
	Income   TypeTotal `json:"income"`
	Expense  TypeTotal `json:"expense"`
	Transfer TypeTotal `json:"transfer"`
	Net      float64   `json:"net"`
}

// CategoryTotal is one row of the by-category breakdown.
type CategoryTotal struct {
	CategoryID   *int64  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color"`
	Total        float64 `json:"total"`
	Count        int     `json:"count"`
}

// MonthSummary is one month of the yearly summary.
type MonthSummary struct {
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// Budget caps spending for a category over a period.
type Budget struct {
	ID               int64     `json:"id"`
	Category         *int64    `json:"category"`
	Name             string    `json:"name"`
	Amount           string    `json:"amount"`
	Period           string    `json:"period"`
	StartDate        string    `json:"start_date"`
	EndDate          *string   `json:"end_date,omitempty"`
	AlertThreshold   int       `json:"alert_threshold"`
	IsActive         bool      `json:"is_active"`
	IsSavingsGoal    bool      `json:"is_savings_goal"`
	SpentAmount      float64   `json:"spent_amount,omitempty"`
	RemainingAmount  float64   `json:"remaining_amount,omitempty"`
	PercentageUsed   float64   `json:"percentage_used,omitempty"`
	IsOverBudget     bool      `json:"is_over_budget,omitempty"`
	IsAlertTriggered bool      `json:"is_alert_triggered,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BudgetInput is the writable subset of a budget.
type BudgetInput struct {
	Category       *int64  `json:"category,omitempty"`
	Name           string  `json:"name"`
	Amount         string  `json:"amount"`
	Period         string  `json:"period"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
	AlertThreshold int     `json:"alert_threshold,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// BudgetSummary aggregates the active budgets.
type BudgetSummary struct {
	TotalBudgets    int     `json:"total_budgets"`
	TotalAmount     float64 `json:"total_amount"`
	TotalSpent      float64 `json:"total_spent"`
	TotalRemaining  float64 `json:"total_remaining"`
	OverBudgetCount int     `json:"over_budget_count"`
	AlertCount      int     `json:"alert_count"`
	PercentageUsed  float64 `json:"percentage_used"`
}

// SavingsGoal is a target amount with a saving plan.
type SavingsGoal struct {
	ID              int64           `json:"id"`
	Label           string          `json:"label"`
	TargetAmount    string          `json:"target_amount"`
	ProductURL      *string         `json:"product_url,omitempty"`
	ProductImageURL *string         `json:"product_image_url,omitempty"`
	TargetDate      *string         `json:"target_date,omitempty"`
	SavingAmount    *string         `json:"saving_amount,omitempty"`
	SavingFrequency string          `json:"saving_frequency"`
	Status          string          `json:"status"`
	Calculated      json.RawMessage `json:"calculated_result,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SavingsGoalInput is the writable subset of a savings goal.
type SavingsGoalInput struct {
	Label           string  `json:"label"`
	TargetAmount    string  `json:"target_amount"`
	ProductURL      *string `json:"product_url,omitempty"`
	ProductImageURL *string `json:"product_image_url,omitempty"`
	TargetDate      *string `json:"target_date,omitempty"`
	SavingAmount    *string `json:"saving_amount,omitempty"`
	SavingFrequency string  `json:"saving_frequency"`
	Status          string  `json:"status,omitempty"`
}

// AlertPayload describes the transaction an alert refers to.
type AlertPayload struct {
	TransactionID int64  `json:"transaction_id"`
	CategoryName  string `json:"category_name"`
	Amount        string `json:"amount"`
	Label         string `json:"label"`
}

// Alert is a pending notification for the user.
type Alert struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Payload   AlertPayload `json:"payload"`
	Seen      bool         `json:"seen"`
	CreatedAt time.Time    `json:"created_at"`
}

// AlertCount is the number of undismissed alerts.
type AlertCount struct {
	Count int `json:"count"`
}

// Profile holds the user's financial preferences.
type Profile struct {
	ID                  int64           `json:"id"`
	MonthlyIncome       string          `json:"monthly_income"`
	Currency            string          `json:"currency"`
	AvailableBudgetInfo json.RawMessage `json:"available_budget_info,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ProfileUpdate is a partial profile update.
type ProfileUpdate struct {
	MonthlyIncome *string `json:"monthly_income,omitempty"`
	Currency      *string `json:"currency,omitempty"`
}

// PasswordChange is the change-password payload.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AccountDeletion confirms deletion of the user's account.
type AccountDeletion struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// APIToken is a long-lived token for scripted access. Token is only
// populated in the response to a create call.
type APIToken struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Token     string     `json:"token,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used"`
	IsActive  bool       `json:"is_active"`
}
