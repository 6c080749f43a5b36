package draft

import (
	"math/rand"
)

// Fixed stage delays, in milliseconds. The preparation window exists so the
// next side's client can render the hand-over before its clock starts.
const (
	PrepWindowMs    = 5000
	SpinDelayMs     = 3000
	ResultDelayMs   = 2000
	ShuffleRevealMs = 4000
)

// Select validates and applies one pick or ban for the given side. All checks
// run against the state re-read inside the store transaction, so two leaders
// racing for the same unit can never both commit.
func (d *Draft) Select(actor string, side Side, unitID string) error {
	if d.Status != StatusActive {
		return validation(KindWrongStatus, "draft is not active")
	}
	if _, ok := d.UnitByID(unitID); !ok {
		return validation(KindUnitUnavailable, "unknown unit %s", unitID)
	}

	if d.Format == FormatDuelBlind {
		return d.selectBlind(actor, side, unitID)
	}

	phases := Phases(d.Format)
	if d.CurrentPhase >= len(phases) {
		return stateErr("draft has no remaining phases")
	}
	phase := phases[d.CurrentPhase]

	if !d.CurrentTurn.Holds(side) || !phase.Side.Holds(side) {
		return validation(KindNotYourTurn, "not your turn")
	}
	if !d.CanAct(actor, side) {
		return validation(KindNotLeader, "only the side leader may select")
	}
	if d.AwaitingLock || d.SelectionsInPhase >= phase.Required {
		return validation(KindQuotaMet, "phase quota already met")
	}

	if phase.IsBan {
		if err := d.applyBan(side, unitID); err != nil {
			return err
		}
	} else {
		if err := d.applyPick(side, unitID); err != nil {
			return err
		}
	}

	d.SelectionsInPhase++
	if d.SelectionsInPhase >= phase.Required {
		d.AwaitingLock = true
	}
	return nil
}

func (d *Draft) applyPick(side Side, unitID string) error {
	if d.Format.Exclusive() {
		if contains(d.SideASelections, unitID) || contains(d.SideBSelections, unitID) {
			return validation(KindUnitUnavailable, "unit %s is already selected", unitID)
		}
	} else {
		// DuelBan picks are only exclusive against bans and the acting
		// side's own roster.
		if contains(d.Ban.BannedUnits, unitID) {
			return validation(KindUnitUnavailable, "unit %s is banned", unitID)
		}
		if contains(d.Selections(side), unitID) {
			return validation(KindUnitUnavailable, "unit %s is already on your roster", unitID)
		}
	}
	d.setSelections(side, append(d.Selections(side), unitID))
	return nil
}

func (d *Draft) applyBan(side Side, unitID string) error {
	if contains(d.Ban.BannedUnits, unitID) {
		return validation(KindUnitUnavailable, "unit %s is already banned", unitID)
	}
	unit, _ := d.UnitByID(unitID)
	own := d.Ban.SideABans
	if side == SideB {
		own = d.Ban.SideBBans
	}
	for _, banned := range own {
		prior, ok := d.UnitByID(banned)
		if ok && prior.Element == unit.Element {
			return validation(KindSameElementBan, "a %s unit is already among your bans", unit.Element)
		}
	}
	if side == SideA {
		d.Ban.SideABans = append(d.Ban.SideABans, unitID)
	} else {
		d.Ban.SideBBans = append(d.Ban.SideBBans, unitID)
	}
	d.Ban.BannedUnits = append(d.Ban.BannedUnits, unitID)
	return nil
}

func (d *Draft) selectBlind(actor string, side Side, unitID string) error {
	if !d.CanAct(actor, side) {
		return validation(KindNotParticipant, "only a matched duelist may select")
	}
	locked := d.Blind.LockedA
	pool := d.Blind.PoolA
	if side == SideB {
		locked = d.Blind.LockedB
		pool = d.Blind.PoolB
	}
	if locked {
		return validation(KindWrongStatus, "side has already locked")
	}
	if len(d.Selections(side)) >= BlindPickCap {
		return validation(KindQuotaMet, "selection cap reached")
	}
	if !contains(pool, unitID) {
		return validation(KindUnitUnavailable, "unit %s is not in your pool", unitID)
	}
	if contains(d.Selections(side), unitID) {
		return validation(KindUnitUnavailable, "unit %s is already selected", unitID)
	}
	d.setSelections(side, append(d.Selections(side), unitID))
	return nil
}

// Remove undoes a not-yet-locked selection at index for side. Removing while
// a lock confirmation is pending first clears the pending confirmation.
func (d *Draft) Remove(actor string, side Side, index int) error {
	if d.Status != StatusActive {
		return validation(KindWrongStatus, "draft is not active")
	}
	if !d.CanAct(actor, side) {
		return validation(KindNotLeader, "only the side leader may remove")
	}

	if d.Format == FormatDuelBlind {
		locked := d.Blind.LockedA
		if side == SideB {
			locked = d.Blind.LockedB
		}
		if locked {
			return validation(KindWrongStatus, "side has already locked")
		}
		units := d.Selections(side)
		if index < 0 || index >= len(units) {
			return stateErr("selection index %d out of range", index)
		}
		d.setSelections(side, append(units[:index:index], units[index+1:]...))
		return nil
	}

	phases := Phases(d.Format)
	if d.CurrentPhase >= len(phases) {
		return stateErr("draft has no remaining phases")
	}
	phase := phases[d.CurrentPhase]
	if !phase.Side.Holds(side) {
		return validation(KindNotYourTurn, "not your turn")
	}

	if phase.IsBan {
		own := d.Ban.SideABans
		if side == SideB {
			own = d.Ban.SideBBans
		}
		// Only bans of the current, unlocked phase can be undone.
		undoable := d.SelectionsInPhase
		if index < len(own)-undoable || index >= len(own) {
			return validation(KindWrongStatus, "ban is already locked")
		}
		removed := own[index]
		own = append(own[:index:index], own[index+1:]...)
		if side == SideA {
			d.Ban.SideABans = own
		} else {
			d.Ban.SideBBans = own
		}
		d.Ban.BannedUnits = remove(d.Ban.BannedUnits, removed)
	} else {
		units := d.Selections(side)
		undoable := d.SelectionsInPhase
		if index < len(units)-undoable || index >= len(units) {
			return validation(KindWrongStatus, "selection is already locked")
		}
		d.setSelections(side, append(units[:index:index], units[index+1:]...))
	}

	d.SelectionsInPhase--
	d.AwaitingLock = false
	return nil
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ConfirmLock commits the current phase once its quota is met, then advances
// the turn. The next side's clock is gated behind the preparation window.
func (d *Draft) ConfirmLock(actor string, nowMs int64) error {
	if d.Status != StatusActive {
		return validation(KindWrongStatus, "draft is not active")
	}
	if !d.AwaitingLock {
		return stateErr("no lock confirmation is pending")
	}
	phase := Phases(d.Format)[d.CurrentPhase]
	actingSide := SideA
	if phase.Side == TurnSideB {
		actingSide = SideB
	}
	if !d.CanAct(actor, actingSide) {
		return validation(KindNotLeader, "only the acting side's leader may confirm")
	}
	d.lockAndAdvance(nowMs)
	return nil
}

// lockAndAdvance is shared between the manual confirmation and the timeout
// force-lock. It assumes the quota of the current phase is satisfied.
func (d *Draft) lockAndAdvance(nowMs int64) {
	phases := Phases(d.Format)
	d.LockedPhases = append(d.LockedPhases, d.CurrentPhase)
	d.AwaitingLock = false
	d.SelectionsInPhase = 0
	d.TurnDeadlineMs = 0

	if d.CurrentPhase >= len(phases)-1 {
		d.Status = StatusCompleted
		d.PrepUntilMs = 0
		return
	}
	d.CurrentPhase++
	d.CurrentTurn = phases[d.CurrentPhase].Side
	d.PrepUntilMs = nowMs + PrepWindowMs
}

// LockSide is the DuelBlind lock: each side commits its three picks
// independently, and the draft completes when both have.
func (d *Draft) LockSide(actor string, side Side) error {
	if d.Format != FormatDuelBlind {
		return stateErr("lockSide only applies to blind drafts")
	}
	if d.Status != StatusActive {
		if d.Status == StatusCompleted {
			return nil
		}
		return validation(KindWrongStatus, "draft is not active")
	}
	if !d.CanAct(actor, side) {
		return validation(KindNotParticipant, "only a matched duelist may lock")
	}
	if len(d.Selections(side)) < BlindPickCap {
		return validation(KindWrongStatus, "side still has open selection slots")
	}
	if side == SideA {
		d.Blind.LockedA = true
	} else {
		d.Blind.LockedB = true
	}
	if d.Blind.LockedA && d.Blind.LockedB {
		d.Status = StatusCompleted
		d.TurnDeadlineMs = 0
	}
	return nil
}

// StartTimer arms the turn clock when the draft runs with manual timer start.
func (d *Draft) StartTimer(actor string, nowMs int64) error {
	if d.Status != StatusActive {
		return validation(KindWrongStatus, "draft is not active")
	}
	if !d.Config.ManualTimerStart {
		return stateErr("draft does not use manual timer start")
	}
	if d.Format == FormatDuelBlind {
		if !d.Admin(actor) && !d.Leader(actor, SideA) && !d.Leader(actor, SideB) {
			return validation(KindNotLeader, "only a duelist or admin may start the clock")
		}
		if d.Blind.DeadlineAMs == 0 {
			d.Blind.DeadlineAMs = nowMs + d.Config.TimerDurationMs
			d.Blind.DeadlineBMs = nowMs + d.Config.TimerDurationMs
		}
		return nil
	}
	actingSide := SideA
	if d.CurrentTurn == TurnSideB {
		actingSide = SideB
	}
	if !d.CanAct(actor, actingSide) {
		return validation(KindNotLeader, "only the acting side's leader may start the clock")
	}
	if d.TurnDeadlineMs == 0 {
		d.TurnDeadlineMs = nowMs + d.Config.TimerDurationMs
		d.PrepUntilMs = 0
	}
	return nil
}

// legalChoices lists the unit ids the acting side could still legally commit
// for the current phase. Shared by validation and the timeout auto-fill so
// the two can never disagree.
func (d *Draft) legalChoices(side Side) []string {
	var out []string
	if d.Format == FormatDuelBlind {
		pool := d.Blind.PoolA
		if side == SideB {
			pool = d.Blind.PoolB
		}
		for _, id := range pool {
			if !contains(d.Selections(side), id) {
				out = append(out, id)
			}
		}
		return out
	}
	phase := Phases(d.Format)[d.CurrentPhase]
	for _, u := range d.Units {
		if phase.IsBan {
			if d.banLegal(side, u) {
				out = append(out, u.ID)
			}
			continue
		}
		if d.pickLegal(side, u.ID) {
			out = append(out, u.ID)
		}
	}
	return out
}

func (d *Draft) pickLegal(side Side, id string) bool {
	if d.Format.Exclusive() {
		return !contains(d.SideASelections, id) && !contains(d.SideBSelections, id)
	}
	return !contains(d.Ban.BannedUnits, id) && !contains(d.Selections(side), id)
}

func (d *Draft) banLegal(side Side, u Unit) bool {
	if contains(d.Ban.BannedUnits, u.ID) {
		return false
	}
	own := d.Ban.SideABans
	if side == SideB {
		own = d.Ban.SideBBans
	}
	for _, banned := range own {
		prior, ok := d.UnitByID(banned)
		if ok && prior.Element == u.Element {
			return false
		}
	}
	return true
}

// Tick is the supervisor's single entry point: it advances every time-gated
// transition that is due at nowMs. It returns false when nothing was due, so
// concurrent supervisors racing over the same draft stay idempotent.
func (d *Draft) Tick(nowMs int64) bool {
	switch d.Status {
	case StatusCoinFlip:
		return d.coinFlipTick(nowMs)
	case StatusPoolShuffle:
		return d.advancePoolShuffle(nowMs)
	case StatusActive:
		if d.Format == FormatDuelBlind {
			return d.blindTick(nowMs)
		}
		return d.turnTick(nowMs)
	default:
		return false
	}
}

func (d *Draft) turnTick(nowMs int64) bool {
	if d.PrepUntilMs != 0 && nowMs < d.PrepUntilMs {
		return false
	}
	if d.TurnDeadlineMs == 0 {
		// Preparation window elapsed: arm the next deadline, unless the
		// draft waits for a manual start.
		if d.Config.ManualTimerStart || d.PrepUntilMs == 0 {
			return false
		}
		d.PrepUntilMs = 0
		d.TurnDeadlineMs = nowMs + d.Config.TimerDurationMs
		return true
	}
	if nowMs < d.TurnDeadlineMs {
		return false
	}

	// Deadline elapsed. Fill any unmet quota with uniformly random legal
	// units, then force-lock and advance without confirmation.
	phase := Phases(d.Format)[d.CurrentPhase]
	side := SideA
	if phase.Side == TurnSideB {
		side = SideB
	}
	for d.SelectionsInPhase < phase.Required {
		pool := d.legalChoices(side)
		if len(pool) == 0 {
			break
		}
		id := pool[rand.Intn(len(pool))]
		if phase.IsBan {
			_ = d.applyBan(side, id)
		} else {
			_ = d.applyPick(side, id)
		}
		d.SelectionsInPhase++
	}
	d.lockAndAdvance(nowMs)
	return true
}

func (d *Draft) blindTick(nowMs int64) bool {
	changed := false
	if !d.Blind.LockedA && d.Blind.DeadlineAMs != 0 && nowMs >= d.Blind.DeadlineAMs {
		d.blindForceLock(SideA)
		changed = true
	}
	if !d.Blind.LockedB && d.Blind.DeadlineBMs != 0 && nowMs >= d.Blind.DeadlineBMs {
		d.blindForceLock(SideB)
		changed = true
	}
	if changed && d.Blind.LockedA && d.Blind.LockedB {
		d.Status = StatusCompleted
	}
	return changed
}

func (d *Draft) blindForceLock(side Side) {
	for len(d.Selections(side)) < BlindPickCap {
		pool := d.legalChoices(side)
		if len(pool) == 0 {
			break
		}
		d.setSelections(side, append(d.Selections(side), pool[rand.Intn(len(pool))]))
	}
	if side == SideA {
		d.Blind.LockedA = true
	} else {
		d.Blind.LockedB = true
	}
}

func (d *Draft) advancePoolShuffle(nowMs int64) bool {
	if d.Blind == nil || nowMs < d.Blind.ShuffleUntilMs {
		return false
	}
	d.Status = StatusActive
	if !d.Config.ManualTimerStart {
		d.Blind.DeadlineAMs = nowMs + d.Config.TimerDurationMs
		d.Blind.DeadlineBMs = nowMs + d.Config.TimerDurationMs
	}
	return true
}

// AdvancePoolShuffle is the participant-driven form of the PoolShuffle
// transition: any matched duelist or admin may drive it once the reveal delay
// has passed. Duplicate calls are no-ops.
func (d *Draft) AdvancePoolShuffle(actor string, nowMs int64) error {
	if d.Status == StatusActive {
		return nil
	}
	if d.Status != StatusPoolShuffle {
		return validation(KindWrongStatus, "draft is not revealing pools")
	}
	if !d.Admin(actor) && !d.Leader(actor, SideA) && !d.Leader(actor, SideB) {
		return validation(KindNotParticipant, "only a matched duelist or admin may advance")
	}
	if !d.advancePoolShuffle(nowMs) {
		return validation(KindWrongStatus, "pool reveal is still in progress")
	}
	return nil
}

// JoinSlot claims an open leader slot on a 1v1 lobby. The first joiner seeds
// side A, the second side B; filling the second slot moves the lobby to the
// coin flip.
func (d *Draft) JoinSlot(uid string) error {
	if !d.Format.Duel() {
		return stateErr("slot join only applies to duel formats")
	}
	if d.Status != StatusWaiting {
		return validation(KindWrongStatus, "lobby is no longer open")
	}
	if d.Leader(uid, SideA) || d.Leader(uid, SideB) {
		return validation(KindAlreadyJoined, "already joined this lobby")
	}
	if d.SideLeaders == nil {
		d.SideLeaders = map[Side]string{}
	}
	if d.Roles == nil {
		d.Roles = map[string]Role{}
	}
	switch {
	case d.SideLeaders[SideA] == "":
		d.SideLeaders[SideA] = uid
		d.Roles[uid] = RoleSideA
	case d.SideLeaders[SideB] == "":
		d.SideLeaders[SideB] = uid
		d.Roles[uid] = RoleSideB
	default:
		return validation(KindLobbyFull, "lobby already has two duelists")
	}
	d.Participants = append(d.Participants, uid)
	if d.SideLeaders[SideA] != "" && d.SideLeaders[SideB] != "" {
		d.Status = StatusCoinFlip
		d.CoinFlip = &CoinFlipState{Phase: FlipWaiting}
	}
	return nil
}

// ShuffleAssign randomly partitions the eligible participants into two
// balanced sides and elects each side's first member as leader.
func (d *Draft) ShuffleAssign(participants []string) error {
	if d.Format.Duel() {
		return stateErr("roster shuffle only applies to team formats")
	}
	if d.Status != StatusWaiting {
		return validation(KindWrongStatus, "lobby is no longer open")
	}
	if len(participants) < 2 {
		return stateErr("need at least two participants to assign sides")
	}
	shuffled := append([]string(nil), participants...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	half := len(shuffled) / 2
	if d.Roles == nil {
		d.Roles = map[string]Role{}
	}
	for i, uid := range shuffled {
		if i < half {
			d.Roles[uid] = RoleSideA
		} else {
			d.Roles[uid] = RoleSideB
		}
	}
	d.SideLeaders = map[Side]string{
		SideA: shuffled[0],
		SideB: shuffled[half],
	}
	d.Participants = shuffled
	d.Status = StatusAssignment
	return nil
}

// Finalize commits the one-shot transition into the active draft. It is
// explicitly idempotent: once a concurrent caller has won the transition,
// later calls observe a post-active status and report no change.
func (d *Draft) Finalize(codes []string, nowMs int64) (bool, error) {
	switch d.Status {
	case StatusActive, StatusPoolShuffle, StatusCompleted:
		return false, nil
	case StatusCoinFlip:
		if d.CoinFlip == nil || d.CoinFlip.Phase != FlipDone {
			return false, validation(KindWrongStatus, "coin flip has not finished")
		}
	case StatusAssignment:
	default:
		return false, validation(KindWrongStatus, "lobby has not been seeded")
	}
	if d.SideLeaders[SideA] == "" || d.SideLeaders[SideB] == "" {
		return false, stateErr("cannot finalize without both side leaders")
	}
	if d.Format != FormatDuelBlind && len(Phases(d.Format)) == 0 {
		return false, stateErr("phase catalog for %s is empty", d.Format)
	}

	d.SideASelections = nil
	d.SideBSelections = nil
	d.LockedPhases = nil
	d.SelectionsInPhase = 0
	d.AwaitingLock = false
	d.BattleCodes = codes

	switch d.Format {
	case FormatDuelBlind:
		d.Blind = d.dealBlindPools()
		d.Blind.ShuffleUntilMs = nowMs + ShuffleRevealMs
		d.Status = StatusPoolShuffle
	case FormatDuelBan:
		d.Ban = &BanState{}
		fallthrough
	default:
		d.Status = StatusActive
		d.CurrentPhase = 0
		d.CurrentTurn = Phases(d.Format)[0].Side
		d.TurnDeadlineMs = 0
		d.PrepUntilMs = nowMs + PrepWindowMs
	}
	return true, nil
}

// dealBlindPools draws two disjoint candidate pools from the unit roster.
func (d *Draft) dealBlindPools() *BlindState {
	ids := make([]string, 0, len(d.Units))
	for _, u := range d.Units {
		ids = append(ids, u.ID)
	}
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	size := BlindPoolSize
	if size > len(ids)/2 {
		size = len(ids) / 2
	}
	return &BlindState{
		PoolA: ids[:size],
		PoolB: ids[size : 2*size],
	}
}

// Reset is the destructive administrative escape hatch: it clears every
// selection, ban, pool, lock, and coin-flip field and returns to Waiting.
func (d *Draft) Reset(actor string, force bool) error {
	if !force && !d.Admin(actor) {
		return validation(KindNotLeader, "only an admin may reset a draft")
	}
	d.Status = StatusWaiting
	d.CurrentPhase = 0
	d.CurrentTurn = ""
	d.SelectionsInPhase = 0
	d.LockedPhases = nil
	d.AwaitingLock = false
	d.SideASelections = nil
	d.SideBSelections = nil
	d.TurnDeadlineMs = 0
	d.PrepUntilMs = 0
	d.CoinFlip = nil
	d.Ban = nil
	d.Blind = nil
	d.BattleCodes = nil
	return nil
}
