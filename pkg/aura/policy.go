package aura

// VibePolicy scores reputation changes when a bet resolves.
type VibePolicy struct {
	CompletionReward int64 `yaml:"completion_reward"`
	FailurePenalty   int64 `yaml:"failure_penalty"`
	DuckPenalty      int64 `yaml:"duck_penalty"`
}

// Policy holds the engine's tunable numbers.
type Policy struct {
	StartingBalance  int64      `yaml:"starting_balance"`
	DailyBonus       int64      `yaml:"daily_bonus"`
	BetCreationCost  int64      `yaml:"bet_creation_cost"`
	MinimumStake     int64      `yaml:"minimum_stake"`
	MaxParticipants  int64      `yaml:"max_participants"`
	MaxDescription   int        `yaml:"max_description"`
	MaxCaption       int        `yaml:"max_caption"`
	MaxNotes         int        `yaml:"max_notes"`
	LedgerRetries    int        `yaml:"ledger_retries"`
	SweepConcurrency int        `yaml:"sweep_concurrency"`
	Vibe             VibePolicy `yaml:"vibe"`
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		StartingBalance:  100,
		DailyBonus:       10,
		BetCreationCost:  10,
		MinimumStake:     1,
		MaxParticipants:  40,
		MaxDescription:   500,
		MaxCaption:       500,
		MaxNotes:         1000,
		LedgerRetries:    5,
		SweepConcurrency: 8,
		Vibe: VibePolicy{
			CompletionReward: 10,
			FailurePenalty:   5,
			DuckPenalty:      15,
		},
	}
}

// withDefaults fills zero limits from DefaultPolicy. Costs and rewards may legitimately be zero.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MinimumStake <= 0 {
		p.MinimumStake = d.MinimumStake
	}
	if p.MaxParticipants <= 0 {
		p.MaxParticipants = d.MaxParticipants
	}
	if p.MaxDescription <= 0 {
		p.MaxDescription = d.MaxDescription
	}
	if p.MaxCaption <= 0 {
		p.MaxCaption = d.MaxCaption
	}
	if p.MaxNotes <= 0 {
		p.MaxNotes = d.MaxNotes
	}
	if p.LedgerRetries <= 0 {
		p.LedgerRetries = d.LedgerRetries
	}
	if p.SweepConcurrency <= 0 {
		p.SweepConcurrency = d.SweepConcurrency
	}
	return p
}
