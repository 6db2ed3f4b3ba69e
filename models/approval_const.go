package models

type ApprovalStatus string

const (
	ApprovalStatusPending          ApprovalStatus = "pending"
	ApprovalStatusAwaitingDecision ApprovalStatus = "awaiting_decision"
	ApprovalStatusApproved         ApprovalStatus = "approved"
	ApprovalStatusRejected         ApprovalStatus = "rejected"
	ApprovalStatusTimeout          ApprovalStatus = "timeout"
)

var approvalStatusHumanName = map[ApprovalStatus]string{
	ApprovalStatusPending:          "Pending",
	ApprovalStatusAwaitingDecision: "Awaiting decision",
	ApprovalStatusApproved:         "Approved",
	ApprovalStatusRejected:         "Rejected",
	ApprovalStatusTimeout:          "Timed out",
}

func (s ApprovalStatus) ToHuman() string {
	if human, exist := approvalStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected || s == ApprovalStatusTimeout
}

// AllowDecision reports whether a decision may still be applied to a request in this status
func (s ApprovalStatus) AllowDecision() bool {
	return s == ApprovalStatusPending || s == ApprovalStatusAwaitingDecision
}

// OpenStatuses are the statuses a compare-and-swap transition may move out of
func OpenStatuses() []ApprovalStatus {
	return []ApprovalStatus{ApprovalStatusPending, ApprovalStatusAwaitingDecision}
}

type DecisionOutcome string

const (
	DecisionOutcomeApproved DecisionOutcome = "approved"
	DecisionOutcomeRejected DecisionOutcome = "rejected"
	DecisionOutcomeTimeout  DecisionOutcome = "timeout"
)

func (o DecisionOutcome) IsValid() bool {
	return o == DecisionOutcomeApproved || o == DecisionOutcomeRejected || o == DecisionOutcomeTimeout
}

// TerminalStatus maps a decision outcome to the terminal request status it produces
func (o DecisionOutcome) TerminalStatus() ApprovalStatus {
	switch o {
	case DecisionOutcomeApproved:
		return ApprovalStatusApproved
	case DecisionOutcomeRejected:
		return ApprovalStatusRejected
	}
	return ApprovalStatusTimeout
}

type StepType string

const (
	StepTypeManagerApproval      StepType = "manager_approval"
	StepTypeAutomaticCheck       StepType = "automatic_check"
	StepTypeExternalReview       StepType = "external_review"
	StepTypeCustomerConfirmation StepType = "customer_confirmation"
	StepTypeDefaultApproval      StepType = "default_approval"
)

func (t StepType) IsValid() bool {
	switch t {
	case StepTypeManagerApproval, StepTypeAutomaticCheck, StepTypeExternalReview,
		StepTypeCustomerConfirmation, StepTypeDefaultApproval:
		return true
	}
	return false
}

type ConditionType string

const (
	ConditionLowUrgency      ConditionType = "low_urgency"
	ConditionRoutineCategory ConditionType = "routine_category"
	ConditionBusinessHours   ConditionType = "business_hours"
	ConditionKnownCustomer   ConditionType = "known_customer"
	ConditionSmallAmount     ConditionType = "small_amount"
	ConditionStandardRequest ConditionType = "standard_request"
)

type CheckType string

const (
	CheckBusinessHours   CheckType = "business_hours"
	CheckCustomerHistory CheckType = "customer_history"
	CheckContentFilter   CheckType = "content_filter"
)

type NotificationType string

const (
	NotificationTypeEmail   NotificationType = "email"
	NotificationTypeWebhook NotificationType = "webhook"
)

// SystemActorID is recorded in the decision log for transitions applied by the engine itself
const SystemActorID = "system"
