package spaceapimodels

import (
	"mailpilot-backend/models"
	"strings"

	"github.com/pkg/errors"
)

type SpaceSettingView struct {
	ID      string                  `json:"id"`
	SpaceID string                  `json:"space_id"`
	Name    string                  `json:"name"`
	Code    models.SpaceSettingCode `json:"code"`
	Value   string                  `json:"value"`
}

type UpdateSpaceSettingValue struct {
	Value string `json:"value"` // new setting value
}

func (r UpdateSpaceSettingValue) Validate() error {
	if strings.TrimSpace(r.Value) == "" {
		return errors.New("new setting value is not specified")
	}
	return nil
}
