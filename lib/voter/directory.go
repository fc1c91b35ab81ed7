package voter

import (
	"sort"
	"strings"
	"sync"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
)

// Directory resolves the address of a voter source into its
// implementation. Only resolvable addresses can be voted in as sources.
type Directory struct {
	sync.RWMutex
	sources map[common.Address]Source
}

func NewDirectory() *Directory {
	return &Directory{sources: map[common.Address]Source{}}
}

func (d *Directory) Register(a common.Address, s Source) error {
	if common.IsZeroAddress(a) {
		return errors.ZeroAddress
	}
	if s == nil {
		return errors.UnknownVoterSource.Clone().SetData("address", a.Hex())
	}

	d.Lock()
	defer d.Unlock()

	d.sources[a] = s
	log.Debug("voter source registered", "address", a)

	return nil
}

func (d *Directory) Unregister(a common.Address) {
	d.Lock()
	defer d.Unlock()

	delete(d.sources, a)
}

func (d *Directory) Resolve(a common.Address) (Source, bool) {
	d.RLock()
	defer d.RUnlock()

	s, ok := d.sources[a]
	return s, ok
}

// Addresses returns the registered addresses in hex order.
func (d *Directory) Addresses() []common.Address {
	d.RLock()
	defer d.RUnlock()

	var l []common.Address
	for a := range d.sources {
		l = append(l, a)
	}
	sort.Slice(l, func(i, j int) bool {
		return strings.Compare(l[i].Hex(), l[j].Hex()) < 0
	})

	return l
}
