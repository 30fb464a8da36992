package checkout

import (
	"fmt"
	"strings"
)

// Config holds the connection settings for the checkout flows. All URLs
// are absolute. The required field set differs between the free plan
// (redirect-only, minimal) and paid plans (full billing round trip).
type Config struct {
	// APIBaseURL is the backend billing API root.
	APIBaseURL string `env:"STOREFRONT_API_BASE_URL"`
	// LoginURL receives unauthenticated paid-plan users.
	LoginURL string `env:"STOREFRONT_LOGIN_URL"`
	// SignupURL receives unauthenticated free-plan users.
	SignupURL string `env:"STOREFRONT_SIGNUP_URL"`
	// DashboardURL is where free-plan users land after sign-in.
	DashboardURL string `env:"STOREFRONT_DASHBOARD_URL"`
	// BillingSuccessURL and BillingFailURL are the card-registration
	// callback pages.
	BillingSuccessURL string `env:"STOREFRONT_BILLING_SUCCESS_URL"`
	BillingFailURL    string `env:"STOREFRONT_BILLING_FAIL_URL"`
	// AfterSuccessURL is the final destination after settlement.
	AfterSuccessURL string `env:"STOREFRONT_AFTER_SUCCESS_URL"`
	// CouponCode is pre-attached to the free-plan sign-up redirect.
	CouponCode string `env:"STOREFRONT_COUPON_CODE"`
}

// ConfigError itemizes the missing required fields. It is produced before
// any I/O happens.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

var (
	freePlanRequired = []string{"SignupURL", "DashboardURL"}
	paidPlanRequired = []string{"APIBaseURL", "LoginURL", "BillingSuccessURL", "BillingFailURL", "AfterSuccessURL"}
)

// Validate checks the field set required for the given plan. Free plans
// need only the redirect targets; paid plans need the full billing
// round-trip configuration.
func (c Config) Validate(planSlug string) error {
	required := paidPlanRequired
	if normalizePlan(planSlug) == PlanFree {
		required = freePlanRequired
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(c.fieldValue(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

func (c Config) fieldValue(name string) string {
	switch name {
	case "APIBaseURL":
		return c.APIBaseURL
	case "LoginURL":
		return c.LoginURL
	case "SignupURL":
		return c.SignupURL
	case "DashboardURL":
		return c.DashboardURL
	case "BillingSuccessURL":
		return c.BillingSuccessURL
	case "BillingFailURL":
		return c.BillingFailURL
	case "AfterSuccessURL":
		return c.AfterSuccessURL
	case "CouponCode":
		return c.CouponCode
	default:
		panic("checkout: unknown config field " + name)
	}
}
