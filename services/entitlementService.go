package services

import (
	"log"
	"net/http"

	"cstutor/db"
	"cstutor/models"
)

const (
	CodeUpgradeRequired = "UPGRADE_REQUIRED"
	CodeLimitReached    = "LIMIT_REACHED"
)

// AccessDecision is the outcome of an entitlement check. Denials are a
// normal control-flow branch, not errors.
type AccessDecision struct {
	Allowed bool
	Status  int
	Code    string
	Message string
	Usage   models.UsageSnapshot
}

type EntitlementService struct {
	users          db.UserRepository
	usage          db.UsageRepository
	freeDailyLimit int
}

func NewEntitlementService(users db.UserRepository, usage db.UsageRepository, freeDailyLimit int) *EntitlementService {
	return &EntitlementService{
		users:          users,
		usage:          usage,
		freeDailyLimit: freeDailyLimit,
	}
}

// ResolveAccess decides whether the user may run a (mode, streaming)
// tutoring turn right now. Read-only: quota is consumed by the caller
// only after a successful reply, so a failed model call costs nothing.
//
// When the store is unavailable the service stays open rather than
// failing closed: everyone is treated as unbounded.
func (s *EntitlementService) ResolveAccess(userID int, mode models.Mode, streaming bool) *AccessDecision {
	if s.users == nil || s.usage == nil {
		return unboundedAccess(models.PlanFree)
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		log.Printf("[WARN] Entitlement lookup failed for user %d, allowing: %v", userID, err)
		return unboundedAccess(models.PlanFree)
	}

	if user.IsPaid() {
		return unboundedAccess(user.Plan)
	}

	used, err := s.usage.GetTodayCount(userID)
	if err != nil {
		log.Printf("[WARN] Usage lookup failed for user %d, allowing: %v", userID, err)
		return unboundedAccess(user.Plan)
	}

	snapshot := models.UsageSnapshot{
		Plan:      user.Plan,
		Used:      used,
		Limit:     s.freeDailyLimit,
		Remaining: max(s.freeDailyLimit-used, 0),
	}

	if streaming {
		return &AccessDecision{
			Status:  http.StatusPaymentRequired,
			Code:    CodeUpgradeRequired,
			Message: "Streaming responses are a paid feature. Upgrade to unlock them.",
			Usage:   snapshot,
		}
	}

	if mode == models.ModeQuiz || mode == models.ModeMark {
		return &AccessDecision{
			Status:  http.StatusPaymentRequired,
			Code:    CodeUpgradeRequired,
			Message: "Quiz and Mark modes are paid features. Upgrade to unlock them.",
			Usage:   snapshot,
		}
	}

	if used >= s.freeDailyLimit {
		snapshot.Remaining = 0
		return &AccessDecision{
			Status:  http.StatusPaymentRequired,
			Code:    CodeLimitReached,
			Message: "You have used all your free tutoring turns for today. Upgrade for unlimited access.",
			Usage:   snapshot,
		}
	}

	return &AccessDecision{Allowed: true, Usage: snapshot}
}

func unboundedAccess(plan models.Plan) *AccessDecision {
	return &AccessDecision{
		Allowed: true,
		Usage:   models.UsageSnapshot{Plan: plan, Limit: -1, Remaining: -1},
	}
}
