package domain

import (
	"strings"
	"time"
)

const (
	// DefaultPlan is assumed when a payment carries no recognisable plan.
	DefaultPlan = "1 месяц"

	// DefaultPlanDuration applies to plans missing from the table.
	DefaultPlanDuration = 30 * 24 * time.Hour

	descriptionPrefix = "VPN тариф:"
)

const day = 24 * time.Hour

var planDurations = map[string]time.Duration{
	"1 месяц":    30 * day,
	"1 month":    30 * day,
	"3 месяца":   90 * day,
	"3 months":   90 * day,
	"6 месяцев":  180 * day,
	"6 months":   180 * day,
	"12 месяцев": 365 * day,
	"1 год":      365 * day,
	"12 months":  365 * day,
	"1 year":     365 * day,
}

// PlanDuration returns the entitlement window for plan. Unknown plans fall
// back to DefaultPlanDuration; ok reports whether the plan was recognised.
func PlanDuration(plan string) (d time.Duration, ok bool) {
	d, ok = planDurations[normalizePlan(plan)]
	if !ok {
		return DefaultPlanDuration, false
	}
	return d, true
}

func normalizePlan(plan string) string {
	return strings.ToLower(strings.Join(strings.Fields(plan), " "))
}

// InvoiceDescription renders the human readable invoice description.
func InvoiceDescription(plan string) string {
	return descriptionPrefix + " " + plan
}

// PlanFromDescription undoes InvoiceDescription. Descriptions without the
// prefix are taken as the bare plan label; blank input yields DefaultPlan.
func PlanFromDescription(description string) string {
	plan := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(description), descriptionPrefix))
	if plan == "" {
		return DefaultPlan
	}
	return plan
}
