package condition

import (
	"context"
	businesshourshandler "mailpilot-backend/lib/business-hours"
	customerhistoryhandler "mailpilot-backend/lib/customer-history"
	"mailpilot-backend/lib/utils/helpers"
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
	"regexp"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultSmallAmountThreshold = 100

// Evaluator decides whether a single auto-approve condition holds for a
// triggered action. Evaluation has no persisted side effects; a failing or
// erroring collaborator always evaluates false so an ambiguous signal can
// never cause an unintended auto-approval.
type Evaluator interface {
	Evaluate(ctx context.Context, spaceID string, cond dbmodels.Condition, payload, reqContext dbmodels.JSONMap) bool
	AnyMatch(ctx context.Context, spaceID string, conds []dbmodels.Condition, payload, reqContext dbmodels.JSONMap) bool
}

func NewEvaluator(businessHours businesshourshandler.Provider, customerHistory customerhistoryhandler.Provider, callTimeout time.Duration) Evaluator {
	return impl{
		businessHours:   businessHours,
		customerHistory: customerHistory,
		callTimeout:     callTimeout,
	}
}

type impl struct {
	businessHours   businesshourshandler.Provider
	customerHistory customerhistoryhandler.Provider
	callTimeout     time.Duration
}

func (i impl) GetLogger(spaceID string, condType models.ConditionType) *log.Entry {
	return log.
		WithField("space_id", spaceID).
		WithField("condition_type", condType)
}

// AnyMatch applies OR semantics over the workflow's auto-approve conditions:
// one satisfied condition is enough to bypass the approval chain
func (i impl) AnyMatch(ctx context.Context, spaceID string, conds []dbmodels.Condition, payload, reqContext dbmodels.JSONMap) bool {
	for _, cond := range conds {
		if i.Evaluate(ctx, spaceID, cond, payload, reqContext) {
			return true
		}
	}
	return false
}

func (i impl) Evaluate(ctx context.Context, spaceID string, cond dbmodels.Condition, payload, reqContext dbmodels.JSONMap) bool {
	switch cond.Type {
	case models.ConditionLowUrgency:
		return classificationValue(reqContext, "urgency") == "low"
	case models.ConditionRoutineCategory:
		return classificationValue(reqContext, "category") == "routine"
	case models.ConditionBusinessHours:
		return i.checkBusinessHours(ctx, spaceID)
	case models.ConditionKnownCustomer:
		return i.checkKnownCustomer(ctx, spaceID, reqContext)
	case models.ConditionSmallAmount:
		return checkSmallAmount(cond, payload)
	case models.ConditionStandardRequest:
		return checkStandardRequest(cond, payload)
	}
	i.GetLogger(spaceID, cond.Type).Warn("unknown auto-approve condition type, treated as not satisfied")
	return false
}

func (i impl) checkBusinessHours(ctx context.Context, spaceID string) bool {
	callCtx, cancel := context.WithTimeout(ctx, i.callTimeout)
	defer cancel()
	ok, err := i.businessHours.IsBusinessHours(callCtx, spaceID, time.Now())
	if err != nil {
		// fail closed: the request goes to the approval chain instead
		i.GetLogger(spaceID, models.ConditionBusinessHours).WithError(err).Warn("business hours lookup failed")
		return false
	}
	return ok
}

func (i impl) checkKnownCustomer(ctx context.Context, spaceID string, reqContext dbmodels.JSONMap) bool {
	email, _ := reqContext["customer_email"].(string)
	if email == "" {
		return false
	}
	callCtx, cancel := context.WithTimeout(ctx, i.callTimeout)
	defer cancel()
	ok, err := i.customerHistory.IsKnownCustomer(callCtx, spaceID, email)
	if err != nil {
		i.GetLogger(spaceID, models.ConditionKnownCustomer).WithError(err).Warn("customer history lookup failed")
		return false
	}
	return ok
}

var moneyPattern = regexp.MustCompile(`(?i)(?:[$€£]|usd|eur|gbp)\s*([0-9]+(?:[.,][0-9]{1,2})?)`)

// ExtractAmount pulls the first monetary value out of the payload text.
// found=false means the payload names no amount, which is treated as
// "needs approval", not as zero.
func ExtractAmount(payload dbmodels.JSONMap) (amount float64, found bool) {
	text := helpers.PayloadText(payload)
	match := moneyPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func checkSmallAmount(cond dbmodels.Condition, payload dbmodels.JSONMap) bool {
	threshold := cond.Threshold
	if threshold <= 0 {
		threshold = defaultSmallAmountThreshold
	}
	amount, found := ExtractAmount(payload)
	if !found {
		return false
	}
	return amount <= threshold
}

func checkStandardRequest(cond dbmodels.Condition, payload dbmodels.JSONMap) bool {
	if len(cond.Keywords) == 0 {
		return false
	}
	text := helpers.PayloadText(payload)
	if text == "" {
		return false
	}
	for _, keyword := range cond.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func classificationValue(reqContext dbmodels.JSONMap, key string) string {
	classification, ok := reqContext["classification"].(map[string]interface{})
	if !ok {
		return ""
	}
	value, _ := classification[key].(string)
	return strings.ToLower(value)
}
