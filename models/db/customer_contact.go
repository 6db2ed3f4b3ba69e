package dbmodels

import "time"

// CustomerContact is the prior-contact history consulted by the known_customer condition
type CustomerContact struct {
	BaseSpaceModel
	Email         string `gorm:"type:varchar(255);index:idx_contact_email"`
	ContactCount  int
	LastContactAt time.Time
}
