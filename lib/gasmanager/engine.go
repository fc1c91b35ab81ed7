package gasmanager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/common/observer"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/ledger"
	"boscoin.io/gasmanager/lib/metrics"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/storage"
	"boscoin.io/gasmanager/lib/voter"
	"boscoin.io/gasmanager/lib/voting"
)

type Options struct {
	Ledger    ledger.Ledger
	Height    common.HeightSource
	Directory *voter.Directory
	// SourceTimeout overrides the timeout stored in the configuration.
	SourceTimeout time.Duration
	Observer      *observable.Observable
}

// Receipt describes one successful mutating call.
type Receipt struct {
	ID     string           `json:"id"`
	Height uint64           `json:"height"`
	Events []observer.Event `json:"events"`
}

// setup is what genesis decides; it does not change afterwards.
type setup struct {
	config  common.Config
	policy  voting.ThresholdPolicy
	adapter *voter.Adapter
}

// Engine is the governance state machine. Mutating calls are serialized by
// the embedded mutex and each runs in one storage transaction; queries read
// the committed state.
type Engine struct {
	sync.Mutex

	st        *storage.LevelDBBackend
	ledger    ledger.Ledger
	height    common.HeightSource
	directory *voter.Directory
	observer  *observable.Observable
	timeout   time.Duration

	setupLock sync.RWMutex
	setup     *setup

	// transferring is 1 while a ledger transfer runs under the lock.
	transferring int32
}

func NewEngine(st *storage.LevelDBBackend, options Options) (*Engine, error) {
	e := &Engine{
		st:        st,
		ledger:    options.Ledger,
		height:    options.Height,
		directory: options.Directory,
		observer:  options.Observer,
		timeout:   options.SourceTimeout,
	}

	if e.ledger == nil {
		e.ledger = ledger.NewAccountLedger()
	}
	if e.height == nil {
		e.height = common.NewManualHeight(1)
	}
	if e.directory == nil {
		e.directory = voter.NewDirectory()
	}
	if e.observer == nil {
		e.observer = observer.GovernanceObserver
	}

	config, found, err := loadConfig(st)
	if err != nil {
		return nil, err
	}
	if found {
		if err = e.configure(config); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (e *Engine) configure(config common.Config) error {
	policy, err := voting.NewThresholdPolicy(config.Policy)
	if err != nil {
		return err
	}

	timeout := e.timeout
	if timeout <= 0 {
		timeout = config.SourceTimeout
	}

	e.setupLock.Lock()
	defer e.setupLock.Unlock()

	e.setup = &setup{
		config:  config,
		policy:  policy,
		adapter: voter.NewAdapter(timeout),
	}

	log.Debug("engine configured", "config", config, "source-timeout", timeout)

	return nil
}

func (e *Engine) getSetup() *setup {
	e.setupLock.RLock()
	defer e.setupLock.RUnlock()

	return e.setup
}

func (e *Engine) IsInitialized() bool {
	return e.getSetup() != nil
}

func (e *Engine) Storage() *storage.LevelDBBackend {
	return e.st
}

func (e *Engine) Ledger() ledger.Ledger {
	return e.ledger
}

func (e *Engine) Directory() *voter.Directory {
	return e.directory
}

func (e *Engine) Height() uint64 {
	return e.height.Height()
}

// Observer is where the events of committed calls are published.
func (e *Engine) Observer() *observable.Observable {
	return e.observer
}

type inFlightKey struct{}

// inFlight reports whether a transfer of this engine is running, or ctx
// comes from one. A mutating call made in either case can only come from a
// collaborator of the transfer, which runs while the lock is held.
func (e *Engine) inFlight(ctx context.Context) bool {
	if atomic.LoadInt32(&e.transferring) == 1 {
		return true
	}
	if ctx == nil {
		return false
	}

	engine, ok := ctx.Value(inFlightKey{}).(*Engine)
	return ok && engine == e
}

// whileTransferring runs the ledger call `f` with the transfer marker set.
func (e *Engine) whileTransferring(f func() error) error {
	atomic.StoreInt32(&e.transferring, 1)
	defer atomic.StoreInt32(&e.transferring, 0)

	return f()
}

// call is the state of one mutating entry point.
type call struct {
	ctx    context.Context
	engine *Engine
	setup  *setup
	st     *storage.LevelDBBackend
	id     string
	name   string
	height uint64
	caller common.Address
	params Parameters

	events []observer.Event
	after  []func()
}

func (c *call) emit(e observer.Event) {
	e.Height = c.height
	e.CallID = c.id
	if len(e.Caller) < 1 {
		e.Caller = c.caller.Hex()
	}

	c.events = append(c.events, e)
}

// afterCommit queues `f` to run once the call is committed.
func (c *call) afterCommit(f func()) {
	c.after = append(c.after, f)
}

func (c *call) inFlightContext() context.Context {
	return context.WithValue(c.ctx, inFlightKey{}, c.engine)
}

func (e *Engine) reject(name string, caller common.Address, err error) {
	var code uint
	if coded, ok := err.(*errors.Error); ok {
		code = coded.Code
	}
	metrics.Governance.AddRejection(code)

	log.Debug("call rejected", "call", name, "caller", caller, "error", err)
}

// mutate runs `f` as one all-or-nothing call. Events staged by `f` are
// published only after the commit.
func (e *Engine) mutate(ctx context.Context, name string, caller common.Address, f func(*call) error) (receipt *Receipt, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if e.inFlight(ctx) {
		err = errors.ReentrantCall.Clone().SetData("call", name)
		e.reject(name, caller, err)
		return
	}

	e.Lock()
	defer e.Unlock()

	s := e.getSetup()
	if s == nil {
		err = errors.NotInitialized
		e.reject(name, caller, err)
		return
	}

	var ts *storage.LevelDBBackend
	if ts, err = e.st.OpenTransaction(); err != nil {
		e.reject(name, caller, err)
		return
	}

	committed := false
	defer func() {
		if !committed {
			ts.Discard()
		}
	}()

	c := &call{
		ctx:    ctx,
		engine: e,
		setup:  s,
		st:     ts,
		id:     common.GenerateUUID(),
		name:   name,
		height: e.height.Height(),
		caller: caller,
	}

	if c.params, err = loadParameters(ts); err == nil {
		err = f(c)
	}
	if err != nil {
		e.reject(name, caller, err)
		return
	}

	if err = ts.Commit(); err != nil {
		e.reject(name, caller, err)
		return
	}
	committed = true

	log.Debug("call committed", "call", name, "id", c.id, "caller", caller, "height", c.height, "events", len(c.events))

	for _, event := range c.events {
		observer.Publish(e.observer, event)
	}
	for _, f := range c.after {
		f()
	}
	e.updateGauges(c.height)

	receipt = &Receipt{ID: c.id, Height: c.height, Events: c.events}
	if receipt.Events == nil {
		receipt.Events = []observer.Event{}
	}

	return
}

func (e *Engine) updateGauges(height uint64) {
	metrics.Governance.SetHeight(height)

	if n, err := loadActiveVotes(e.st); err == nil {
		metrics.Governance.SetOpenTallies(n)
	}
	if n, err := registry.Guardians.Count(e.st); err == nil {
		metrics.Governance.SetGuardians(int(n))
	}
}
