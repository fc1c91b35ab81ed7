package metrics

func InitPrometheusMetrics() {
	Version = PromVersion()
	Governance = PromGovernanceMetrics()
	Source = PromSourceMetrics()
	API = PromAPIMetrics()
}
