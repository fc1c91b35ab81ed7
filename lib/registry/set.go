package registry

import (
	"fmt"
	"strings"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/storage"
)

// Set is an indexed set of addresses kept in storage. Removal moves the last
// member into the freed slot, so the order of `List` is not stable across
// removals.
//
// models, for a set with prefix `p`
//  * '<p>-count': number of members
//  * '<p>-index-<n>': the member at slot `n`
//  * '<p>-position-<address>': slot of `address`
type Set struct {
	prefix string
}

func NewSet(prefix string) Set {
	return Set{prefix: prefix}
}

var (
	Voters    = NewSet("voters")
	Guardians = NewSet("guardians")
	Sources   = NewSet("sources")
	Whitelist = NewSet("whitelist")
)

func (s Set) Prefix() string {
	return s.prefix
}

func (s Set) countKey() string {
	return fmt.Sprintf("%s-count", s.prefix)
}

func (s Set) indexKey(n uint64) string {
	return fmt.Sprintf("%s-index-%020d", s.prefix, n)
}

func (s Set) positionKey(a common.Address) string {
	return fmt.Sprintf("%s-position-%s", s.prefix, strings.ToLower(a.Hex()))
}

func (s Set) Count(st *storage.LevelDBBackend) (n uint64, err error) {
	_, err = st.GetOrDefault(s.countKey(), &n)
	return
}

func (s Set) Has(st *storage.LevelDBBackend, a common.Address) (bool, error) {
	return st.Has(s.positionKey(a))
}

func (s Set) Add(st *storage.LevelDBBackend, a common.Address) (err error) {
	var exists bool
	if exists, err = s.Has(st, a); err != nil {
		return
	} else if exists {
		return errors.AlreadyMember.Clone().SetData("address", a.Hex()).SetData("set", s.prefix)
	}

	var n uint64
	if n, err = s.Count(st); err != nil {
		return
	}

	if err = st.Put(s.indexKey(n), a); err != nil {
		return
	}
	if err = st.Put(s.positionKey(a), n); err != nil {
		return
	}

	return st.Put(s.countKey(), n+1)
}

// Remove swaps the last member into the slot of `a` and truncates.
func (s Set) Remove(st *storage.LevelDBBackend, a common.Address) (err error) {
	var position uint64
	var found bool
	if found, err = st.GetOrDefault(s.positionKey(a), &position); err != nil {
		return
	} else if !found {
		return errors.NotMember.Clone().SetData("address", a.Hex()).SetData("set", s.prefix)
	}

	var n uint64
	if n, err = s.Count(st); err != nil {
		return
	}
	last := n - 1

	if position != last {
		var moved common.Address
		if err = st.Get(s.indexKey(last), &moved); err != nil {
			return
		}
		if err = st.Put(s.indexKey(position), moved); err != nil {
			return
		}
		if err = st.Put(s.positionKey(moved), position); err != nil {
			return
		}
	}

	if err = st.Delete(s.indexKey(last)); err != nil {
		return
	}
	if err = st.Delete(s.positionKey(a)); err != nil {
		return
	}

	return st.Put(s.countKey(), last)
}

func (s Set) List(st *storage.LevelDBBackend) (l []common.Address, err error) {
	var n uint64
	if n, err = s.Count(st); err != nil {
		return
	}

	l = make([]common.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		var a common.Address
		if err = st.Get(s.indexKey(i), &a); err != nil {
			return nil, err
		}
		l = append(l, a)
	}

	return
}

// Clear removes every member and returns the removed members.
func (s Set) Clear(st *storage.LevelDBBackend) (removed []common.Address, err error) {
	if removed, err = s.List(st); err != nil {
		return
	}

	for i, a := range removed {
		if err = st.Delete(s.indexKey(uint64(i))); err != nil {
			return
		}
		if err = st.Delete(s.positionKey(a)); err != nil {
			return
		}
	}

	err = st.Put(s.countKey(), uint64(0))

	return
}
