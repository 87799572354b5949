package aura

// Kind classifies engine errors by how a caller should react to them.
type Kind int

const (
	// KindValidation is malformed or out-of-range input.
	KindValidation Kind = iota + 1
	// KindState is an operation that is not legal in the bet's current state.
	KindState
	// KindConflict is a race the client should not blindly retry.
	KindConflict
	// KindAuthorization is a caller acting on something they do not own.
	KindAuthorization
	// KindNotFound is a missing bet or proof.
	KindNotFound
	// KindInsufficientResource is a business-rule shortfall, e.g. not enough Aura.
	KindInsufficientResource
)

// Error is a classified engine error. Two Errors match under errors.Is when their codes match,
// so a sentinel still matches after WithMessage.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Validation errors.
var (
	ErrInvalidAmount         = newError(KindValidation, "InvalidAmount", "amount must be a positive integer")
	ErrInvalidBetType        = newError(KindValidation, "InvalidBetType", "betType must be one of self, callout, dare")
	ErrInvalidDescription    = newError(KindValidation, "InvalidDescription", "description must be 1-500 characters")
	ErrInvalidDeadline       = newError(KindValidation, "InvalidDeadline", "deadline must be in the future")
	ErrTargetRequired        = newError(KindValidation, "TargetRequired", "targetUserId is required for callout and dare bets")
	ErrTargetNotAllowed      = newError(KindValidation, "TargetNotAllowed", "targetUserId is not allowed for self bets")
	ErrCannotTargetSelf      = newError(KindValidation, "CannotTargetSelf", "you cannot target yourself")
	ErrTargetNotInChat       = newError(KindValidation, "TargetNotInChat", "target user is not a member of this chat")
	ErrInvalidSide           = newError(KindValidation, "InvalidSide", "side must be yes or no")
	ErrMinimumStakeNotMet    = newError(KindValidation, "MinimumStakeNotMet", "stake is below the minimum")
	ErrInvalidOutcome        = newError(KindValidation, "InvalidOutcome", "outcome must be one of yes, no, expired, ducked")
	ErrInvalidOutcomeForType = newError(KindValidation, "InvalidOutcomeForType", "ducked is only valid for callout bets")
	ErrInvalidNotes          = newError(KindValidation, "InvalidNotes", "notes are too long")
	ErrInvalidMediaType      = newError(KindValidation, "InvalidMediaType", "mediaType must be photo or video")
	ErrInvalidMedia          = newError(KindValidation, "InvalidMedia", "mediaUrl and mediaKey are required")
	ErrInvalidCaption        = newError(KindValidation, "InvalidCaption", "caption is too long")
	ErrInvalidStatus         = newError(KindValidation, "InvalidStatus", "status must be one of active, completed, expired, ducked")
)

// State errors.
var (
	ErrCannotStake         = newError(KindState, "CannotStake", "bet is not accepting stakes")
	ErrBetFull             = newError(KindState, "BetFull", "bet has reached its participant limit")
	ErrAlreadyResolved     = newError(KindState, "AlreadyResolved", "bet has already been resolved")
	ErrCannotSubmitProof   = newError(KindState, "CannotSubmitProof", "bet is not accepting proof")
	ErrBonusAlreadyClaimed = newError(KindState, "BonusAlreadyClaimed", "daily bonus already claimed today")
)

// Conflict errors.
var (
	ErrAlreadyStaked = newError(KindConflict, "AlreadyStaked", "you have already staked on this bet")
	ErrContention    = newError(KindConflict, "Contention", "too many concurrent updates, try again")
)

// Authorization errors.
var (
	ErrNotAuthorized = newError(KindAuthorization, "NotAuthorized", "you are not allowed to do that")
	ErrNotChatMember = newError(KindAuthorization, "NotChatMember", "you are not a member of this chat")
)

// Not-found errors.
var (
	ErrBetNotFound   = newError(KindNotFound, "BetNotFound", "bet not found")
	ErrProofNotFound = newError(KindNotFound, "ProofNotFound", "proof not found")
)

// Insufficient-resource errors.
var (
	ErrInsufficientAura = newError(KindInsufficientResource, "InsufficientAura", "not enough aura")
)
