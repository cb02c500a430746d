package models

import "time"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

type User struct {
	ID                 int       `json:"id"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	Plan               Plan      `json:"plan"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
}

// IsPaid reports whether the user's subscription currently unlocks paid
// features. Trialing subscriptions count as paid.
func (u *User) IsPaid() bool {
	if u.Plan != PlanPro && u.Plan != PlanPremium {
		return false
	}
	return u.SubscriptionStatus == "active" || u.SubscriptionStatus == "trialing"
}

// UsageSnapshot is the billing/usage state reported back to the client,
// both on success and inside entitlement denials. Limit is -1 when the
// plan is unbounded.
type UsageSnapshot struct {
	Plan      Plan `json:"plan"`
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}
