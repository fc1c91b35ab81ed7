package errors

var (
	NotVoter                = NewError(100, "caller is not a voter")
	NotGuardian             = NewError(101, "caller is not a guardian")
	NotGuardianOrRecipient  = NewError(102, "caller is neither a guardian nor the recipient")
	RecipientNotWhitelisted = NewError(103, "recipient is not whitelisted")

	ZeroTarget          = NewError(200, "target must not be zero")
	ZeroAddress         = NewError(201, "address must not be zero")
	ZeroAmount          = NewError(202, "amount must not be zero")
	ParameterOutOfRange = NewError(203, "parameter is out of range")
	UnknownActionType   = NewError(204, "unknown action type")
	UnknownVoterSource  = NewError(205, "voter source can not be resolved")
	SourceProbeFailed   = NewError(206, "voter source failed the capability probe")
	ActionNotSupported  = NewError(207, "action is not supported by this governance variant")
	InvalidAddress      = NewError(208, "invalid address")
	InvalidConfig       = NewError(209, "invalid configuration")
	InvalidTarget       = NewError(210, "target is not valid for the action")

	AlreadyVoted            = NewError(300, "already voted on this tally")
	AlreadyMember           = NewError(301, "target is already a member")
	NotMember               = NewError(302, "target is not a member")
	TallyNotExpired         = NewError(303, "tally has not expired yet")
	NoActiveTally           = NewError(304, "no active tally")
	RosterChangeBlocked     = NewError(305, "roster can not change while other votes are open")
	LastVoter               = NewError(306, "can not remove the last voter")
	LastVoterSource         = NewError(307, "can not remove the last voter source")
	NoGuardians             = NewError(308, "there are no guardians to clear")
	AlreadyApproved         = NewError(309, "action is already approved and waiting for execution")
	ReentrantCall           = NewError(310, "reentrant call")
	RosterManagedExternally = NewError(311, "voters are managed by the validator allow-list")
	MaxBalanceExceeded      = NewError(312, "recipient balance would exceed the maximum balance")
	PeriodLimitExceeded     = NewError(313, "recipient would exceed the funding limit of the period")
	AlreadyInitialized      = NewError(314, "governance state is already initialized")
	NotInitialized          = NewError(315, "governance state is not initialized")

	ApprovalMissing = NewError(400, "no matching approval")

	TransferFailed         = NewError(500, "transfer failed")
	TransferAmountMismatch = NewError(501, "transferred amount does not match")
	InsufficientBalance    = NewError(502, "insufficient balance")

	NoVoters = NewError(600, "there are no voters")

	StorageCoreError           = NewError(900, "storage error")
	StorageRecordDoesNotExist  = NewError(901, "record does not exist in storage")
	StorageRecordAlreadyExists = NewError(902, "record already exists in storage")
	BadRequestParameter        = NewError(903, "bad request parameter")
	NotImplemented             = NewError(904, "not implemented")
)
