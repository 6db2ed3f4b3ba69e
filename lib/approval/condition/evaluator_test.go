package condition

import (
	"context"
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeBusinessHours struct {
	ok  bool
	err error
}

func (f fakeBusinessHours) IsBusinessHours(ctx context.Context, spaceID string, at time.Time) (bool, error) {
	return f.ok, f.err
}

type fakeCustomerHistory struct {
	known bool
	err   error
}

func (f fakeCustomerHistory) IsKnownCustomer(ctx context.Context, spaceID, email string) (bool, error) {
	return f.known, f.err
}

func (f fakeCustomerHistory) RecordContact(spaceID, email string) error {
	return nil
}

func newTestEvaluator(bh fakeBusinessHours, ch fakeCustomerHistory) Evaluator {
	return NewEvaluator(bh, ch, time.Second)
}

func TestEvaluate(t *testing.T) {
	ctx := context.TODO()
	spaceID := "space-1"

	t.Run(`low urgency matches the classification value`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionLowUrgency}
		reqContext := dbmodels.JSONMap{"classification": map[string]interface{}{"urgency": "Low"}}
		require.True(t, e.Evaluate(ctx, spaceID, cond, nil, reqContext))

		reqContext = dbmodels.JSONMap{"classification": map[string]interface{}{"urgency": "high"}}
		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, reqContext))

		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, dbmodels.JSONMap{}))
	})

	t.Run(`routine category`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionRoutineCategory}
		reqContext := dbmodels.JSONMap{"classification": map[string]interface{}{"category": "routine"}}
		require.True(t, e.Evaluate(ctx, spaceID, cond, nil, reqContext))
	})

	t.Run(`business hours lookup error evaluates false`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{ok: true, err: errors.New("settings unavailable")}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionBusinessHours}
		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, nil))
	})

	t.Run(`business hours lookup result is passed through`, func(t *testing.T) {
		cond := dbmodels.Condition{Type: models.ConditionBusinessHours}
		e := newTestEvaluator(fakeBusinessHours{ok: true}, fakeCustomerHistory{})
		require.True(t, e.Evaluate(ctx, spaceID, cond, nil, nil))
		e = newTestEvaluator(fakeBusinessHours{ok: false}, fakeCustomerHistory{})
		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, nil))
	})

	t.Run(`known customer needs an email in the context`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{known: true})
		cond := dbmodels.Condition{Type: models.ConditionKnownCustomer}
		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, dbmodels.JSONMap{}))

		reqContext := dbmodels.JSONMap{"customer_email": "client@example.com"}
		require.True(t, e.Evaluate(ctx, spaceID, cond, nil, reqContext))
	})

	t.Run(`customer history error evaluates false`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{known: true, err: errors.New("db down")})
		cond := dbmodels.Condition{Type: models.ConditionKnownCustomer}
		reqContext := dbmodels.JSONMap{"customer_email": "client@example.com"}
		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, reqContext))
	})

	t.Run(`small amount below the threshold`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionSmallAmount, Threshold: 50}
		payload := dbmodels.JSONMap{"body": "we will refund $49.90 to your card"}
		require.True(t, e.Evaluate(ctx, spaceID, cond, payload, nil))

		payload = dbmodels.JSONMap{"body": "the invoice total is $51"}
		require.False(t, e.Evaluate(ctx, spaceID, cond, payload, nil))
	})

	t.Run(`payload without an amount never auto-approves on small amount`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionSmallAmount, Threshold: 1000}
		payload := dbmodels.JSONMap{"body": "thanks for your patience, no charges apply"}
		require.False(t, e.Evaluate(ctx, spaceID, cond, payload, nil))
	})

	t.Run(`standard request keyword match is case-insensitive`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionStandardRequest, Keywords: []string{"Password Reset"}}
		payload := dbmodels.JSONMap{"subject": "Re: PASSWORD reset instructions"}
		require.True(t, e.Evaluate(ctx, spaceID, cond, payload, nil))

		cond.Keywords = []string{"billing address"}
		require.False(t, e.Evaluate(ctx, spaceID, cond, payload, nil))
	})

	t.Run(`standard request without keywords never matches`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{}, fakeCustomerHistory{})
		cond := dbmodels.Condition{Type: models.ConditionStandardRequest}
		payload := dbmodels.JSONMap{"subject": "anything"}
		require.False(t, e.Evaluate(ctx, spaceID, cond, payload, nil))
	})

	t.Run(`unknown condition type evaluates false`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{ok: true}, fakeCustomerHistory{known: true})
		cond := dbmodels.Condition{Type: models.ConditionType("vip_customer")}
		require.False(t, e.Evaluate(ctx, spaceID, cond, nil, nil))
	})
}

func TestAnyMatch(t *testing.T) {
	ctx := context.TODO()
	spaceID := "space-1"

	t.Run(`no conditions means no auto-approval`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{ok: true}, fakeCustomerHistory{})
		require.False(t, e.AnyMatch(ctx, spaceID, nil, nil, nil))
	})

	t.Run(`one satisfied condition is enough`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{ok: false}, fakeCustomerHistory{})
		conds := []dbmodels.Condition{
			{Type: models.ConditionBusinessHours},
			{Type: models.ConditionRoutineCategory},
		}
		reqContext := dbmodels.JSONMap{"classification": map[string]interface{}{"category": "routine"}}
		require.True(t, e.AnyMatch(ctx, spaceID, conds, nil, reqContext))
	})

	t.Run(`all conditions failing keeps the approval chain`, func(t *testing.T) {
		e := newTestEvaluator(fakeBusinessHours{ok: false}, fakeCustomerHistory{known: false})
		conds := []dbmodels.Condition{
			{Type: models.ConditionBusinessHours},
			{Type: models.ConditionKnownCustomer},
		}
		require.False(t, e.AnyMatch(ctx, spaceID, conds, nil, dbmodels.JSONMap{"customer_email": "new@example.com"}))
	})
}

func TestExtractAmount(t *testing.T) {
	t.Run(`currency symbol with decimals`, func(t *testing.T) {
		amount, found := ExtractAmount(dbmodels.JSONMap{"body": "total due: $123.45 by friday"})
		require.True(t, found)
		require.Equal(t, 123.45, amount)
	})

	t.Run(`currency code with comma separator`, func(t *testing.T) {
		amount, found := ExtractAmount(dbmodels.JSONMap{"body": "offer price EUR 99,50 including vat"})
		require.True(t, found)
		require.Equal(t, 99.5, amount)
	})

	t.Run(`amount inside a nested payload`, func(t *testing.T) {
		payload := dbmodels.JSONMap{
			"draft": map[string]interface{}{
				"body": "we can offer a discount of £20",
			},
		}
		amount, found := ExtractAmount(payload)
		require.True(t, found)
		require.Equal(t, float64(20), amount)
	})

	t.Run(`no monetary value`, func(t *testing.T) {
		_, found := ExtractAmount(dbmodels.JSONMap{"body": "see you at 10:30"})
		require.False(t, found)
	})
}
