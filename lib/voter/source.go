package voter

import (
	"context"
	"sync"

	"boscoin.io/gasmanager/lib/common"
)

// Source is anything able to tell who its voters are: another engine, a
// validator allow-list or a remote node.
type Source interface {
	ListVoters(ctx context.Context) ([]common.Address, error)
	IsVoter(ctx context.Context, a common.Address) (bool, error)
}

// StaticSource is a Source over a fixed, replaceable list.
type StaticSource struct {
	sync.RWMutex
	voters []common.Address
}

func NewStaticSource(voters ...common.Address) *StaticSource {
	s := &StaticSource{}
	s.Set(voters...)

	return s
}

func (s *StaticSource) Set(voters ...common.Address) {
	s.Lock()
	defer s.Unlock()

	s.voters = append([]common.Address{}, voters...)
}

func (s *StaticSource) ListVoters(context.Context) ([]common.Address, error) {
	s.RLock()
	defer s.RUnlock()

	return append([]common.Address{}, s.voters...), nil
}

func (s *StaticSource) IsVoter(_ context.Context, a common.Address) (bool, error) {
	s.RLock()
	defer s.RUnlock()

	_, found := common.InAddresses(s.voters, a)
	return found, nil
}
