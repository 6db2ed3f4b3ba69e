package approvalhandler

import (
	"context"
	"fmt"
	"mailpilot-backend/lib/approval/step"
	"mailpilot-backend/models"
	apimodels "mailpilot-backend/models/api"
	approvalapimodels "mailpilot-backend/models/api/approval"
	dbmodels "mailpilot-backend/models/db"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSpaceID = "space-1"

type fakeApprovalStore struct {
	mu   sync.Mutex
	seq  int
	recs map[string]*dbmodels.ApprovalRequest
}

func newFakeApprovalStore() *fakeApprovalStore {
	return &fakeApprovalStore{recs: map[string]*dbmodels.ApprovalRequest{}}
}

func (f *fakeApprovalStore) Create(rec dbmodels.ApprovalRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	rec.ID = fmt.Sprintf("req-%v", f.seq)
	rec.CreatedAt = time.Now()
	f.recs[rec.ID] = &rec
	return rec.ID, nil
}

func (f *fakeApprovalStore) GetByID(spaceID, id string) (*dbmodels.ApprovalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok || rec.SpaceID != spaceID {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeApprovalStore) ListPending(spaceID string, page, limit int) ([]dbmodels.ApprovalRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []dbmodels.ApprovalRequest{}
	for _, rec := range f.recs {
		if rec.SpaceID == spaceID && !rec.Status.IsTerminal() {
			list = append(list, *rec)
		}
	}
	return list, int64(len(list)), nil
}

func (f *fakeApprovalStore) ListExpired(now time.Time, limit int) ([]dbmodels.ApprovalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []dbmodels.ApprovalRequest{}
	for _, rec := range f.recs {
		if !rec.Status.IsTerminal() && !rec.TimeoutAt.After(now) {
			list = append(list, *rec)
		}
	}
	return list, nil
}

func (f *fakeApprovalStore) TransitionStatus(spaceID, id string, from []models.ApprovalStatus, updMap map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok || rec.SpaceID != spaceID {
		return false, nil
	}
	inFrom := false
	for _, status := range from {
		if rec.Status == status {
			inFrom = true
			break
		}
	}
	if !inFrom {
		return false, nil
	}
	if status, ok := updMap["Status"].(models.ApprovalStatus); ok {
		rec.Status = status
	}
	return true, nil
}

func (f *fakeApprovalStore) AdvanceStep(spaceID, id string, fromStepIndex int, updMap map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok || rec.SpaceID != spaceID {
		return false, nil
	}
	if rec.Status.IsTerminal() || rec.CurrentStepIndex != fromStepIndex {
		return false, nil
	}
	if index, ok := updMap["CurrentStepIndex"].(int); ok {
		rec.CurrentStepIndex = index
	}
	if status, ok := updMap["Status"].(models.ApprovalStatus); ok {
		rec.Status = status
	}
	return true, nil
}

func (f *fakeApprovalStore) SetArchiveKey(spaceID, id, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.recs[id]; ok {
		rec.ArchiveObjectKey = objectKey
	}
	return nil
}

type fakeDecisionStore struct {
	mu   sync.Mutex
	recs []dbmodels.ApprovalDecision
}

func (f *fakeDecisionStore) Create(rec dbmodels.ApprovalDecision) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = fmt.Sprintf("dec-%v", len(f.recs)+1)
	rec.CreatedAt = time.Now()
	f.recs = append(f.recs, rec)
	return rec.ID, nil
}

func (f *fakeDecisionStore) List(spaceID, requestID string) ([]dbmodels.ApprovalDecision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []dbmodels.ApprovalDecision{}
	for _, rec := range f.recs {
		if rec.SpaceID == spaceID && rec.RequestID == requestID {
			list = append(list, rec)
		}
	}
	return list, nil
}

type fakeWorkflowStore struct {
	recs map[string]dbmodels.WorkflowDefinition
}

func (f fakeWorkflowStore) Add(rec dbmodels.WorkflowDefinition, withID bool) error { return nil }

func (f fakeWorkflowStore) GetByID(spaceID, id string) (*dbmodels.WorkflowDefinition, error) {
	rec, ok := f.recs[id]
	if !ok || rec.SpaceID != spaceID {
		return nil, nil
	}
	return &rec, nil
}

func (f fakeWorkflowStore) List(spaceID string) ([]dbmodels.WorkflowDefinition, error) {
	return nil, nil
}

func (f fakeWorkflowStore) Update(spaceID, id string, updMap map[string]interface{}) error {
	return nil
}

type fakeEvaluator struct {
	match bool
}

func (f fakeEvaluator) Evaluate(ctx context.Context, spaceID string, cond dbmodels.Condition, payload, reqContext dbmodels.JSONMap) bool {
	return f.match
}

func (f fakeEvaluator) AnyMatch(ctx context.Context, spaceID string, conds []dbmodels.Condition, payload, reqContext dbmodels.JSONMap) bool {
	return f.match
}

// fakeProcessor replays a scripted sequence of step results
type fakeProcessor struct {
	mu      sync.Mutex
	results []step.Result
	calls   int
}

func (f *fakeProcessor) Dispatch(ctx context.Context, req dbmodels.ApprovalRequest, wf dbmodels.WorkflowDefinition, s dbmodels.WorkflowStep) step.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.results) == 0 {
		return step.Result{Outcome: step.OutcomeAwaitingDecision, Reason: "decision required"}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent [][]models.Notification
}

func (f *fakeNotifier) Send(spaceID, requestID string, items []models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(items) > 0 {
		f.sent = append(f.sent, items)
	}
}

type fakeArchive struct{}

func (f fakeArchive) ArchivePayload(ctx context.Context, spaceID, requestID string, payload dbmodels.JSONMap) (string, error) {
	return fmt.Sprintf("%v/%v.json", spaceID, requestID), nil
}

func (f fakeArchive) GetPayload(ctx context.Context, objectKey string) ([]byte, error) {
	return nil, nil
}

type testEnv struct {
	store         *fakeApprovalStore
	decisionStore *fakeDecisionStore
	notifier      *fakeNotifier
	manager       Provider
}

func newTestEnv(autoApprove bool, processor *fakeProcessor, workflows ...dbmodels.WorkflowDefinition) testEnv {
	store := newFakeApprovalStore()
	decisionStore := &fakeDecisionStore{}
	notifier := &fakeNotifier{}
	wfStore := fakeWorkflowStore{recs: map[string]dbmodels.WorkflowDefinition{}}
	for _, wf := range workflows {
		wfStore.recs[wf.ID] = wf
	}
	manager := NewInstanceWithDeps(store, decisionStore, wfStore,
		fakeEvaluator{match: autoApprove}, processor, notifier, fakeArchive{}, time.Second)
	return testEnv{
		store:         store,
		decisionStore: decisionStore,
		notifier:      notifier,
		manager:       manager,
	}
}

func twoStepWorkflow() dbmodels.WorkflowDefinition {
	return dbmodels.WorkflowDefinition{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			BaseModel: dbmodels.BaseModel{ID: "wf-1"},
			SpaceID:   testSpaceID,
		},
		Name:    "Outgoing offers",
		Enabled: true,
		ApprovalSteps: dbmodels.StepList{
			{Type: models.StepTypeManagerApproval, Recipients: []string{"mgr-1"}},
			{Type: models.StepTypeExternalReview, Recipients: []string{"legal@corp.example"}},
		},
		TimeoutHours: 48,
	}
}

func triggerData() approvalapimodels.TriggerData {
	return approvalapimodels.TriggerData{
		WorkflowID:    "wf-1",
		ActionPayload: map[string]interface{}{"subject": "Re: renewal quote"},
		Context:       map[string]interface{}{"customer_email": "client@example.com"},
	}
}

func TestTrigger(t *testing.T) {
	ctx := context.TODO()

	t.Run(`a satisfied auto-approve condition persists nothing`, func(t *testing.T) {
		env := newTestEnv(true, &fakeProcessor{}, twoStepWorkflow())
		result, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.True(t, result.AutoApproved)
		require.Empty(t, result.RequestID)
		require.Empty(t, env.store.recs)
		require.Empty(t, env.decisionStore.recs)
	})

	t.Run(`unknown workflow is a client error`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{})
		_, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.NotEmpty(t, hMsg)
	})

	t.Run(`disabled workflow rejects the trigger`, func(t *testing.T) {
		wf := twoStepWorkflow()
		wf.Enabled = false
		env := newTestEnv(false, &fakeProcessor{}, wf)
		_, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.Contains(t, hMsg, "disabled")
	})

	t.Run(`no match opens a request awaiting a decision`, func(t *testing.T) {
		processor := &fakeProcessor{results: []step.Result{
			{Outcome: step.OutcomeAwaitingDecision, Notifications: []models.Notification{{Type: models.NotificationTypeEmail, Recipient: "lead@corp.example"}}},
		}}
		env := newTestEnv(false, processor, twoStepWorkflow())

		before := time.Now()
		result, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.False(t, result.AutoApproved)
		require.NotEmpty(t, result.RequestID)

		rec := env.store.recs[result.RequestID]
		require.NotNil(t, rec)
		require.Equal(t, models.ApprovalStatusAwaitingDecision, rec.Status)
		require.Equal(t, 0, rec.CurrentStepIndex)
		// the approval window is fixed at creation from the workflow setting
		require.WithinDuration(t, before.Add(48*time.Hour), rec.TimeoutAt, time.Minute)
		require.NotEmpty(t, rec.ArchiveObjectKey)
		require.Len(t, env.notifier.sent, 1)
	})

	t.Run(`first step auto-approval finishes a single-step chain immediately`, func(t *testing.T) {
		wf := twoStepWorkflow()
		wf.ApprovalSteps = dbmodels.StepList{{Type: models.StepTypeAutomaticCheck, Checks: []models.CheckType{models.CheckContentFilter}}}
		processor := &fakeProcessor{results: []step.Result{
			{Outcome: step.OutcomeAutoApproved, Reason: "all automatic checks passed"},
		}}
		env := newTestEnv(false, processor, wf)

		result, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.Empty(t, hMsg)

		rec := env.store.recs[result.RequestID]
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
		require.Len(t, env.decisionStore.recs, 1)
		require.Equal(t, models.SystemActorID, env.decisionStore.recs[0].ActorID)
	})

	t.Run(`step handler failure leaves the request awaiting a decision`, func(t *testing.T) {
		processor := &fakeProcessor{results: []step.Result{
			{Outcome: step.OutcomeError, Reason: "collaborator unavailable"},
		}}
		env := newTestEnv(false, processor, twoStepWorkflow())

		result, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.Empty(t, hMsg)
		rec := env.store.recs[result.RequestID]
		require.Equal(t, models.ApprovalStatusAwaitingDecision, rec.Status)
	})
}

func TestDecide(t *testing.T) {
	ctx := context.TODO()

	openRequest := func(env testEnv) string {
		result, hMsg, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		require.Empty(t, hMsg)
		return result.RequestID
	}

	t.Run(`approving a non-final step advances the index by one`, func(t *testing.T) {
		processor := &fakeProcessor{}
		env := newTestEnv(false, processor, twoStepWorkflow())
		id := openRequest(env)

		view, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeApproved, "fine by me")
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusAwaitingDecision, view.Status)
		require.Equal(t, 1, view.CurrentStepIndex)

		require.Len(t, env.decisionStore.recs, 1)
		dec := env.decisionStore.recs[0]
		require.Equal(t, 0, dec.StepIndex)
		require.Equal(t, models.DecisionOutcomeApproved, dec.Outcome)
		require.Equal(t, "mgr-1", dec.ActorID)
	})

	t.Run(`approving the final step approves the request`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		id := openRequest(env)

		_, _, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeApproved, "")
		require.NoError(t, err)
		view, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, "legal@corp.example", models.DecisionOutcomeApproved, "")
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusApproved, view.Status)
		require.Len(t, env.decisionStore.recs, 2)
	})

	t.Run(`a rejection at any step is terminal`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		id := openRequest(env)

		view, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeRejected, "not like this")
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusRejected, view.Status)
	})

	t.Run(`a repeated decision on a finished request changes nothing`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		id := openRequest(env)

		_, _, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeRejected, "")
		require.NoError(t, err)
		view, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeApproved, "second thoughts")
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusRejected, view.Status)
		// no extra log record for the no-op
		require.Len(t, env.decisionStore.recs, 1)
	})

	t.Run(`an auto-approved next step cascades as a system decision`, func(t *testing.T) {
		wf := twoStepWorkflow()
		wf.ApprovalSteps = dbmodels.StepList{
			{Type: models.StepTypeManagerApproval, Recipients: []string{"mgr-1"}},
			{Type: models.StepTypeAutomaticCheck, Checks: []models.CheckType{models.CheckContentFilter}},
		}
		processor := &fakeProcessor{results: []step.Result{
			{Outcome: step.OutcomeAwaitingDecision}, // first dispatch at creation
			{Outcome: step.OutcomeAutoApproved, Reason: "all automatic checks passed"},
		}}
		env := newTestEnv(false, processor, wf)
		id := openRequest(env)

		view, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeApproved, "")
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusApproved, view.Status)

		require.Len(t, env.decisionStore.recs, 2)
		require.Equal(t, "mgr-1", env.decisionStore.recs[0].ActorID)
		require.Equal(t, models.SystemActorID, env.decisionStore.recs[1].ActorID)
	})

	t.Run(`timeout outcome honours the workflow policy`, func(t *testing.T) {
		wf := twoStepWorkflow()
		wf.TimeoutOutcome = models.DecisionOutcomeRejected
		env := newTestEnv(false, &fakeProcessor{}, wf)
		id := openRequest(env)

		view, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, models.SystemActorID, models.DecisionOutcomeTimeout, "approval window elapsed")
		require.NoError(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusRejected, view.Status)
	})

	t.Run(`timeout outcome defaults to the timeout status`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		id := openRequest(env)

		view, _, err := env.manager.Decide(ctx, testSpaceID, id, models.SystemActorID, models.DecisionOutcomeTimeout, "approval window elapsed")
		require.NoError(t, err)
		require.Equal(t, models.ApprovalStatusTimeout, view.Status)
	})

	t.Run(`unknown request is a client error`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		_, hMsg, err := env.manager.Decide(ctx, testSpaceID, "req-404", "mgr-1", models.DecisionOutcomeApproved, "")
		require.NoError(t, err)
		require.NotEmpty(t, hMsg)
	})

	t.Run(`invalid outcome is a client error`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		id := openRequest(env)
		_, hMsg, err := env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcome("maybe"), "")
		require.NoError(t, err)
		require.NotEmpty(t, hMsg)
	})

	t.Run(`concurrent decisions settle on one terminal state`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		id := openRequest(env)

		wg := sync.WaitGroup{}
		outcomes := []models.DecisionOutcome{models.DecisionOutcomeRejected, models.DecisionOutcomeTimeout}
		for _, outcome := range outcomes {
			wg.Add(1)
			go func(outcome models.DecisionOutcome) {
				defer wg.Done()
				_, _, err := env.manager.Decide(ctx, testSpaceID, id, "actor", outcome, "")
				require.NoError(t, err)
			}(outcome)
		}
		wg.Wait()

		rec := env.store.recs[id]
		require.True(t, rec.Status.IsTerminal())
		// exactly one of the racers got to write the log record
		require.Len(t, env.decisionStore.recs, 1)
	})
}

func TestListPendingAndHistory(t *testing.T) {
	ctx := context.TODO()

	t.Run(`pending list reflects open requests only`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		result, _, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		_, _, err = env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)

		_, _, err = env.manager.Decide(ctx, testSpaceID, result.RequestID, "mgr-1", models.DecisionOutcomeRejected, "")
		require.NoError(t, err)

		list, rowCount, err := env.manager.ListPending(testSpaceID, apimodels.Pagination{})
		require.NoError(t, err)
		require.Equal(t, int64(1), rowCount)
		require.Len(t, list, 1)
	})

	t.Run(`history returns the decision trail in order`, func(t *testing.T) {
		env := newTestEnv(false, &fakeProcessor{}, twoStepWorkflow())
		result, _, err := env.manager.Trigger(ctx, testSpaceID, triggerData())
		require.NoError(t, err)
		id := result.RequestID

		_, _, err = env.manager.Decide(ctx, testSpaceID, id, "mgr-1", models.DecisionOutcomeApproved, "ok")
		require.NoError(t, err)
		_, _, err = env.manager.Decide(ctx, testSpaceID, id, "legal@corp.example", models.DecisionOutcomeApproved, "ship it")
		require.NoError(t, err)

		history, err := env.manager.History(testSpaceID, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.Equal(t, 0, history[0].StepIndex)
		require.Equal(t, 1, history[1].StepIndex)
		require.Equal(t, "mgr-1", history[0].ActorID)
	})
}
