package metrics

var (
	Governance = NopGovernanceMetrics()
	Source     = NopSourceMetrics()
	API        = NopAPIMetrics()
)
