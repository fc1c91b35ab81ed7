package gasmanager

import (
	"context"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/storage"
)

// listVoters merges every voter the deployment knows about. In the
// allow-list mode it is the list of the configured source; otherwise the
// local roster followed by each voter source in registration order.
// Duplicates are kept.
func (e *Engine) listVoters(ctx context.Context, st *storage.LevelDBBackend, s *setup) (voters []common.Address, err error) {
	if s.config.Membership == common.MembershipAllowList {
		source, found := e.directory.Resolve(s.config.AllowListSource)
		if !found {
			log.Warn("allow-list source is not registered", "source", s.config.AllowListSource)
			return []common.Address{}, nil
		}

		voters = s.adapter.ListVoters(ctx, s.config.AllowListSource, source)
		if voters == nil {
			voters = []common.Address{}
		}
		return
	}

	if voters, err = registry.Voters.List(st); err != nil {
		return
	}

	var sources []common.Address
	if sources, err = registry.Sources.List(st); err != nil {
		return
	}

	for _, a := range sources {
		source, found := e.directory.Resolve(a)
		if !found {
			log.Warn("voter source is not registered", "source", a)
			continue
		}
		voters = append(voters, s.adapter.ListVoters(ctx, a, source)...)
	}

	return
}

func (e *Engine) isVoter(ctx context.Context, st *storage.LevelDBBackend, s *setup, a common.Address) (bool, error) {
	if common.IsZeroAddress(a) {
		return false, nil
	}

	if s.config.Membership == common.MembershipAllowList {
		source, found := e.directory.Resolve(s.config.AllowListSource)
		if !found {
			log.Warn("allow-list source is not registered", "source", s.config.AllowListSource)
			return false, nil
		}

		return s.adapter.IsVoter(ctx, s.config.AllowListSource, source, a), nil
	}

	if found, err := registry.Voters.Has(st, a); err != nil || found {
		return found, err
	}

	sources, err := registry.Sources.List(st)
	if err != nil {
		return false, err
	}

	for _, name := range sources {
		source, found := e.directory.Resolve(name)
		if !found {
			continue
		}
		if s.adapter.IsVoter(ctx, name, source, a) {
			return true, nil
		}
	}

	return false, nil
}

func (c *call) listVoters() ([]common.Address, error) {
	return c.engine.listVoters(c.ctx, c.st, c.setup)
}

func (c *call) isVoter(a common.Address) (bool, error) {
	return c.engine.isVoter(c.ctx, c.st, c.setup, a)
}
