package draft

import (
	"math/rand"
)

// CoinFlipPhase tracks the pre-draft seeding ceremony.
type CoinFlipPhase string

const (
	FlipWaiting    CoinFlipPhase = "WAITING"
	FlipRolling    CoinFlipPhase = "ROLLING"
	FlipSpinning   CoinFlipPhase = "SPINNING"
	FlipResult     CoinFlipPhase = "RESULT"
	FlipTurnChoice CoinFlipPhase = "TURN_CHOICE"
	FlipDone       CoinFlipPhase = "DONE"
)

// TurnChoice is the winning leader's pick of acting order.
type TurnChoice string

const (
	ChoiceFirst  TurnChoice = "FIRST"
	ChoiceSecond TurnChoice = "SECOND"
)

// CoinFlipState is the coin-flip sub-document. Outcome is drawn the moment
// both leaders are ready; the spin and result stages that follow are purely
// cosmetic delays, so no client can observe the outcome before both commit.
type CoinFlipState struct {
	Phase        CoinFlipPhase `firestore:"phase" json:"phase"`
	SideAReady   bool          `firestore:"sideAReady" json:"sideAReady"`
	SideBReady   bool          `firestore:"sideBReady" json:"sideBReady"`
	Outcome      Side          `firestore:"outcome,omitempty" json:"outcome,omitempty"`
	WinnerChoice TurnChoice    `firestore:"winnerChoice,omitempty" json:"winnerChoice,omitempty"`
	StageUntilMs int64         `firestore:"stageUntilMs" json:"stageUntilMs"`
}

// CoinFlipReady marks the calling leader ready. When the second leader
// commits, the outcome is drawn uniformly in the same transaction.
func (d *Draft) CoinFlipReady(actor string, nowMs int64) error {
	if d.Status != StatusCoinFlip || d.CoinFlip == nil {
		return validation(KindWrongStatus, "draft is not in the coin flip")
	}
	cf := d.CoinFlip
	if cf.Phase != FlipWaiting && cf.Phase != FlipRolling {
		return validation(KindWrongStatus, "coin flip is already rolling")
	}
	switch {
	case d.Leader(actor, SideA):
		cf.SideAReady = true
	case d.Leader(actor, SideB):
		cf.SideBReady = true
	default:
		return validation(KindNotLeader, "only a matched leader may ready up")
	}
	cf.Phase = FlipRolling
	if cf.SideAReady && cf.SideBReady {
		cf.Outcome = SideA
		if rand.Intn(2) == 1 {
			cf.Outcome = SideB
		}
		cf.Phase = FlipSpinning
		cf.StageUntilMs = nowMs + SpinDelayMs
	}
	return nil
}

// coinFlipTick drives the time-gated cosmetic stages. No side effects beyond
// the phase pointer, so concurrent supervisors are harmless.
func (d *Draft) coinFlipTick(nowMs int64) bool {
	cf := d.CoinFlip
	if cf == nil || cf.StageUntilMs == 0 || nowMs < cf.StageUntilMs {
		return false
	}
	switch cf.Phase {
	case FlipSpinning:
		cf.Phase = FlipResult
		cf.StageUntilMs = nowMs + ResultDelayMs
		return true
	case FlipResult:
		cf.Phase = FlipTurnChoice
		cf.StageUntilMs = 0
		return true
	default:
		return false
	}
}

// CoinFlipChoose records the winner's order choice and fixes the final side
// assignment: side A is always the side that acts first, so choosing Second
// swaps the two leaders.
func (d *Draft) CoinFlipChoose(actor string, choice TurnChoice) error {
	if d.Status != StatusCoinFlip || d.CoinFlip == nil {
		return validation(KindWrongStatus, "draft is not in the coin flip")
	}
	cf := d.CoinFlip
	if cf.Phase != FlipTurnChoice {
		return validation(KindWrongStatus, "the turn choice is not open yet")
	}
	if choice != ChoiceFirst && choice != ChoiceSecond {
		return stateErr("unknown turn choice %q", choice)
	}
	if !d.Leader(actor, cf.Outcome) {
		return validation(KindNotLeader, "only the winning leader may choose")
	}
	cf.WinnerChoice = choice

	actsFirst := cf.Outcome
	if choice == ChoiceSecond {
		actsFirst = cf.Outcome.Other()
	}
	if actsFirst == SideB {
		d.swapSides()
	}
	cf.Phase = FlipDone
	return nil
}

// CoinFlipCancel returns the lobby to Waiting, clearing all coin-flip state.
// Admin only, and only before the flip is done.
func (d *Draft) CoinFlipCancel(actor string) error {
	if d.Status != StatusCoinFlip || d.CoinFlip == nil {
		return validation(KindWrongStatus, "draft is not in the coin flip")
	}
	if !d.Admin(actor) {
		return validation(KindNotLeader, "only an admin may cancel the coin flip")
	}
	if d.CoinFlip.Phase == FlipDone {
		return validation(KindWrongStatus, "coin flip already finished")
	}
	d.CoinFlip = nil
	d.Status = StatusWaiting
	return nil
}

func (d *Draft) swapSides() {
	a, b := d.SideLeaders[SideA], d.SideLeaders[SideB]
	d.SideLeaders[SideA], d.SideLeaders[SideB] = b, a
	for uid, role := range d.Roles {
		switch role {
		case RoleSideA:
			d.Roles[uid] = RoleSideB
		case RoleSideB:
			d.Roles[uid] = RoleSideA
		}
	}
}
