package spaceapimodels

import (
	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"
)

type SpaceUserView struct {
	ID        string          `json:"id"`
	SpaceID   string          `json:"space_id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      models.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
}

func SpaceUserConvert(rec dbmodels.SpaceUser) SpaceUserView {
	return SpaceUserView{
		ID:        rec.ID,
		SpaceID:   rec.SpaceID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Role:      rec.Role,
		IsActive:  rec.IsActive,
	}
}
