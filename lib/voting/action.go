package voting

import (
	"encoding/json"
	"strconv"
	"strings"

	"boscoin.io/gasmanager/lib/errors"
)

// ActionType is the closed set of operations gated by a vote. New kinds of
// action are added here and nowhere else.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionAddVoter
	ActionRemoveVoter
	ActionAddGuardian
	ActionRemoveGuardian
	ActionClearGuardians
	ActionAddVoterSource
	ActionRemoveVoterSource
	ActionExpirationWindow
	ActionFund
	ActionBurnTokens
	ActionBurnCoins
	ActionWhitelistAdd
	ActionWhitelistRemove
	ActionPeriodLimit
	ActionMaxBalance
	ActionFundingPeriod

	actionEnd
)

type Family string

const (
	FamilyRoster    Family = "roster"
	FamilyGuardian  Family = "guardian"
	FamilyParameter Family = "parameter"
	FamilyValue     Family = "value-moving"
	FamilyWhitelist Family = "whitelist"
)

type actionInfo struct {
	name   string
	family Family
	// legacyOnly actions exist only in the legacy variant
	legacyOnly bool
}

var actionInfos = map[ActionType]actionInfo{
	ActionAddVoter:          {"add-voter", FamilyRoster, false},
	ActionRemoveVoter:       {"remove-voter", FamilyRoster, false},
	ActionAddGuardian:       {"add-guardian", FamilyGuardian, false},
	ActionRemoveGuardian:    {"remove-guardian", FamilyGuardian, false},
	ActionClearGuardians:    {"clear-guardians", FamilyGuardian, false},
	ActionAddVoterSource:    {"add-voter-source", FamilyRoster, false},
	ActionRemoveVoterSource: {"remove-voter-source", FamilyRoster, false},
	ActionExpirationWindow:  {"expiration-window", FamilyParameter, false},
	ActionFund:              {"fund", FamilyValue, false},
	ActionBurnTokens:        {"burn-tokens", FamilyValue, false},
	ActionBurnCoins:         {"burn-coins", FamilyValue, false},
	ActionWhitelistAdd:      {"whitelist-add", FamilyWhitelist, true},
	ActionWhitelistRemove:   {"whitelist-remove", FamilyWhitelist, true},
	ActionPeriodLimit:       {"period-limit", FamilyParameter, true},
	ActionMaxBalance:        {"max-balance", FamilyParameter, true},
	ActionFundingPeriod:     {"funding-period", FamilyParameter, true},
}

func AllActionTypes() []ActionType {
	var l []ActionType
	for a := ActionAddVoter; a < actionEnd; a++ {
		l = append(l, a)
	}
	return l
}

func (a ActionType) IsValid() bool {
	_, ok := actionInfos[a]
	return ok
}

func (a ActionType) String() string {
	if info, ok := actionInfos[a]; ok {
		return info.name
	}
	return "unknown-" + strconv.Itoa(int(a))
}

func (a ActionType) Family() Family {
	return actionInfos[a].family
}

func (a ActionType) IsLegacyOnly() bool {
	return actionInfos[a].legacyOnly
}

// ChangesRoster is true for the actions which change the set of voters.
func (a ActionType) ChangesRoster() bool {
	return a.Family() == FamilyRoster
}

func (a ActionType) IsValueMoving() bool {
	return a.Family() == FamilyValue
}

// ParseActionType accepts the action name or its number.
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, info := range actionInfos {
		if info.name == s {
			return a, nil
		}
	}

	if n, err := strconv.ParseUint(s, 10, 8); err == nil && ActionType(n).IsValid() {
		return ActionType(n), nil
	}

	return ActionUnknown, errors.UnknownActionType.Clone().SetData("action", s)
}

func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n uint8
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.UnknownActionType.Clone().SetData("action", string(b))
		}
		s = strconv.Itoa(int(n))
	}

	parsed, err := ParseActionType(s)
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}
