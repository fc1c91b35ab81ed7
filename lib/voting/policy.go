package voting

import (
	"strings"

	"boscoin.io/gasmanager/lib/errors"
)

const (
	PolicyMajority      = "majority"
	PolicySupermajority = "supermajority"
)

// ThresholdPolicy computes the number of votes a tally needs against the
// current number of voters.
type ThresholdPolicy interface {
	Name() string
	Threshold(voters int) (int, error)
}

// MajorityPolicy needs more than half of the voters.
type MajorityPolicy struct{}

func (MajorityPolicy) Name() string {
	return PolicyMajority
}

func (MajorityPolicy) Threshold(voters int) (int, error) {
	if voters < 1 {
		return 0, errors.NoVoters
	}

	return voters/2 + 1, nil
}

// SupermajorityPolicy needs two thirds of the voters, rounded up.
type SupermajorityPolicy struct{}

func (SupermajorityPolicy) Name() string {
	return PolicySupermajority
}

func (SupermajorityPolicy) Threshold(voters int) (int, error) {
	if voters < 1 {
		return 0, errors.NoVoters
	}

	return (2*voters + 2) / 3, nil
}

func NewThresholdPolicy(name string) (ThresholdPolicy, error) {
	switch strings.ToLower(name) {
	case PolicyMajority:
		return MajorityPolicy{}, nil
	case PolicySupermajority:
		return SupermajorityPolicy{}, nil
	}

	return nil, errors.InvalidConfig.Clone().SetData("policy", name)
}
