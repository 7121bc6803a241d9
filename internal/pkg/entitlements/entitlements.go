package entitlements

import "github.com/tablescout/tablescout/app/models"

// Plan is the effective access tier derived from the subscription state.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

const (
	// FreeDailySearches is the daily search cap on the free tier.
	FreeDailySearches int64 = 25
	// Unlimited marks a limit that is not enforced.
	Unlimited int64 = -1
)

// PlanFor derives the effective plan from a user's subscription state.
// Cancelled subscriptions keep premium access until the provider sends
// subscription_expired, so is_premium alone decides.
func PlanFor(u *models.User) Plan {
	if u != nil && u.IsPremium {
		return PlanPremium
	}
	return PlanFree
}

// DailySearchLimit returns the searches allowed per day for a plan.
func DailySearchLimit(plan Plan) int64 {
	if plan == PlanPremium {
		return Unlimited
	}
	return FreeDailySearches
}

// CanSaveFavorites reports whether the plan may save favorite restaurants
// beyond the free allowance.
func CanSaveFavorites(plan Plan) bool {
	return plan == PlanPremium
}
