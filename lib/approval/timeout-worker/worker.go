package approvaltimeoutworker

import (
	"context"
	"mailpilot-backend/config"
	"mailpilot-backend/db"
	approvalhandler "mailpilot-backend/lib/approval"
	approvalstore "mailpilot-backend/lib/approval/store"
	baseworker "mailpilot-backend/lib/utils/base-worker"
	"mailpilot-backend/lib/utils/helpers"
	"mailpilot-backend/models"
	"time"
)

func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl: *baseworker.NewInstance("ApprovalTimeoutWorker",
			time.Duration(config.Conf.Approval.SweepFirstRunDelayInSec)*time.Second,
			time.Duration(config.Conf.Approval.SweepIntervalInSec)*time.Second),
		store:     approvalstore.NewInstance(db.DB),
		manager:   approvalhandler.Instance,
		batchSize: config.Conf.Approval.SweepBatchSize,
	}
	go i.Run(ctx, i.handle)
}

// NewSweep builds a sweep over explicit collaborators
func NewSweep(store approvalstore.Provider, manager approvalhandler.Provider, batchSize int) *impl {
	return &impl{
		BaseImpl:  *baseworker.NewInstance("ApprovalTimeoutWorker", 0, 0),
		store:     store,
		manager:   manager,
		batchSize: batchSize,
	}
}

type impl struct {
	baseworker.BaseImpl
	store     approvalstore.Provider
	manager   approvalhandler.Provider
	batchSize int
}

func (i impl) handle(ctx context.Context) {
	i.Sweep(ctx)
}

// Sweep forces a terminal transition for every expired open request through
// the same compare-and-swap path a human decision takes. A race with a
// concurrently arriving decision is settled by the swap: the loser is a
// no-op, never an error.
func (i impl) Sweep(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.store.ListExpired(time.Now(), i.batchSize)
	if err != nil {
		logger.WithError(err).Error("failed to list expired approval requests")
		return
	}
	for _, rec := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		_, hMsg, err := i.manager.Decide(ctx, rec.SpaceID, rec.ID, models.SystemActorID,
			models.DecisionOutcomeTimeout, "approval window elapsed")
		if err != nil {
			// one broken request must not abort the sweep of the others
			logger.
				WithError(err).
				WithField("space_id", rec.SpaceID).
				WithField("request_id", rec.ID).
				Error("failed to time out an expired approval request")
			continue
		}
		if hMsg != "" {
			logger.
				WithField("space_id", rec.SpaceID).
				WithField("request_id", rec.ID).
				Warnf("expired request skipped: %v", hMsg)
		}
	}
}
