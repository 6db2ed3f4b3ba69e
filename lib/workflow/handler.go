package workflowhandler

import (
	"mailpilot-backend/db"
	workflowstore "mailpilot-backend/lib/workflow/store"
	approvalapimodels "mailpilot-backend/models/api/approval"

	"github.com/pkg/errors"
)

type Provider interface {
	List(spaceID string) ([]approvalapimodels.WorkflowView, error)
	GetByID(spaceID, id string) (view approvalapimodels.WorkflowView, hMsg string, err error)
	SetEnabled(spaceID, id string, enabled bool) (hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		store: workflowstore.NewInstance(db.DB),
	}
}

type impl struct {
	store workflowstore.Provider
}

func (i impl) List(spaceID string) ([]approvalapimodels.WorkflowView, error) {
	list, err := i.store.List(spaceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workflows")
	}
	result := make([]approvalapimodels.WorkflowView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.WorkflowConvert(rec))
	}
	return result, nil
}

func (i impl) GetByID(spaceID, id string) (approvalapimodels.WorkflowView, string, error) {
	rec, err := i.store.GetByID(spaceID, id)
	if err != nil {
		return approvalapimodels.WorkflowView{}, "", errors.Wrap(err, "failed to get workflow")
	}
	if rec == nil {
		return approvalapimodels.WorkflowView{}, "workflow not found", nil
	}
	return approvalapimodels.WorkflowConvert(*rec), "", nil
}

func (i impl) SetEnabled(spaceID, id string, enabled bool) (string, error) {
	rec, err := i.store.GetByID(spaceID, id)
	if err != nil {
		return "", errors.Wrap(err, "failed to get workflow")
	}
	if rec == nil {
		return "workflow not found", nil
	}
	updMap := map[string]interface{}{"enabled": enabled}
	if err := i.store.Update(spaceID, id, updMap); err != nil {
		return "", errors.Wrap(err, "failed to update workflow")
	}
	return "", nil
}
