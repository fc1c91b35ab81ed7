package observer

import (
	"strings"

	"github.com/GianlucaGuarini/go-observable"
)

var GovernanceObserver = observable.New()

const (
	EventVoteCast      = "vote-cast"
	EventTallyReset    = "tally-reset"
	EventStateChanged  = "state-changed"
	EventVoterAdded    = "voter-added"
	EventVoterRemoved  = "voter-removed"
	EventSourceAdded   = "voter-source-added"
	EventSourceRemoved = "voter-source-removed"

	EventGuardianAdded    = "guardian-added"
	EventGuardianRemoved  = "guardian-removed"
	EventGuardiansCleared = "guardians-cleared"

	EventExpirationWindowUpdated = "expiration-window-updated"

	EventFundApproved     = "fund-approved"
	EventFundExecuted     = "fund-executed"
	EventBurnApproved     = "burn-approved"
	EventBurnExecuted     = "burn-executed"
	EventCoinBurnApproved = "coin-burn-approved"
	EventCoinBurnExecuted = "coin-burn-executed"

	EventWhitelistAdded       = "whitelist-added"
	EventWhitelistRemoved     = "whitelist-removed"
	EventPeriodLimitUpdated   = "period-limit-updated"
	EventMaxBalanceUpdated    = "max-balance-updated"
	EventFundingPeriodUpdated = "funding-period-updated"
)

// EventAll is triggered along with every event.
const EventAll = "all-events"

// Event is the payload of every governance event.
type Event struct {
	Name   string `json:"name"`
	Height uint64 `json:"height"`
	CallID string `json:"call_id,omitempty"`
	Action string `json:"action,omitempty"`
	Target string `json:"target,omitempty"`
	Caller string `json:"caller,omitempty"`

	// Subject is the address an event is about: the voter, guardian, source,
	// recipient or token.
	Subject string `json:"subject,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Value   uint64 `json:"value,omitempty"`
	Votes   uint64 `json:"votes,omitempty"`
}

func NewEvent(name string, height uint64) Event {
	return Event{Name: name, Height: height}
}

func (e Event) String() string {
	s := e.Name
	if len(e.Action) > 0 {
		s += "-" + e.Action
	}
	if len(e.Target) > 0 {
		s += "=" + e.Target
	}
	return s
}

// Publish triggers `e` under its own name and under `EventAll`.
func Publish(ob *observable.Observable, e Event) {
	ob.Trigger(e.Name, e)
	ob.Trigger(EventAll, e)
}

// Subscribe is the set of event names a stream listens to; an empty
// Subscribe listens to every event.
type Subscribe struct {
	Events []string `json:"events"`
}

func NewSubscribe(events ...string) Subscribe {
	s := Subscribe{}
	for _, e := range events {
		if e = strings.TrimSpace(e); len(e) > 0 {
			s.Events = append(s.Events, e)
		}
	}
	return s
}

// Names returns the observable event names to listen on.
func (s Subscribe) Names() []string {
	if len(s.Events) < 1 {
		return []string{EventAll}
	}
	return s.Events
}

func (s Subscribe) String() string {
	return strings.Join(s.Names(), "&")
}
