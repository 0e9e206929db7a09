package signal

import (
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
)

// Outcome — итог оценки одного кандидата.
type Outcome int

const (
	OutcomeNotEligible Outcome = iota
	OutcomeFound
	OutcomeTransientError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotEligible:
		return "not_eligible"
	case OutcomeTransientError:
		return "transient_error"
	default:
		return "unknown"
	}
}

// Причины NotEligible.
const (
	ReasonLowLiquidity    = "low_liquidity"
	ReasonFewWatchers     = "few_watchers"
	ReasonNoItem          = "no_item"
	ReasonNoSnapshot      = "no_snapshot"
	ReasonStaleSnapshot   = "stale_snapshot"
	ReasonNoListing       = "no_listing"
	ReasonNonPositiveCost = "non_positive_cost"
	ReasonBelowThreshold  = "below_threshold"
)

// Evaluation — размеченный результат: Found несёт сигнал, NotEligible —
// причину, TransientError — ошибку.
type Evaluation struct {
	Outcome Outcome
	Signal  *entity.Signal
	// Created отличает новый сигнал от обновлённого на месте.
	Created bool
	Reason  string
	Err     error
}

func found(sig *entity.Signal) Evaluation {
	return Evaluation{Outcome: OutcomeFound, Signal: sig}
}

func notEligible(reason string) Evaluation {
	return Evaluation{Outcome: OutcomeNotEligible, Reason: reason}
}

func transient(err error) Evaluation {
	return Evaluation{Outcome: OutcomeTransientError, Err: err}
}

// Summary — агрегат одного прохода по направлению.
type Summary struct {
	Direction   value.Direction
	Evaluated   int
	Found       int
	Created     int
	Updated     int
	NotEligible map[string]int
	Transient   int
	// New — сигналы, созданные в этом проходе.
	New []entity.Signal
}

func newSummary(direction value.Direction) Summary {
	return Summary{
		Direction:   direction,
		NotEligible: make(map[string]int),
	}
}

func (s *Summary) add(e Evaluation) {
	s.Evaluated++

	switch e.Outcome {
	case OutcomeFound:
		s.Found++
	case OutcomeNotEligible:
		s.NotEligible[e.Reason]++
	case OutcomeTransientError:
		s.Transient++
	}
}
