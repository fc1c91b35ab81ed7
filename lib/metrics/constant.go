package metrics

const (
	Namespace           = "gasmanager"
	GovernanceSubsystem = "governance"
	SourceSubsystem     = "source"
	APISubsystem        = "api"
)

const (
	LabelAction = "action"
	LabelFamily = "family"
	LabelCode   = "code"
	LabelSource = "source"
	LabelReason = "reason"
)
