package models

// Notification is the delivery descriptor handed to the dispatch collaborators.
// Delivery status is not tracked by the engine.
type Notification struct {
	Type       NotificationType `json:"type"`
	Recipient  string           `json:"recipient"`
	Subject    string           `json:"subject"`
	Message    string           `json:"message"`
	ActionLink string           `json:"action_link,omitempty"`
}
