package metrics

import (
	"runtime"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"boscoin.io/gasmanager/lib/version"
)

var Version metrics.Gauge = discard.NewGauge()

func PromVersion() metrics.Gauge {
	return prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build and deployment of the running engine, always 1.",
	}, []string{"version", "git_commit", "go_version", "variant", "policy"})
}

// SetVersion publishes the build together with the variant and the policy
// chosen at genesis.
func SetVersion(variant, policy string) {
	Version.With(
		"version", version.Version,
		"git_commit", version.GitCommit,
		"go_version", runtime.Version(),
		"variant", variant,
		"policy", policy,
	).Set(1)
}
