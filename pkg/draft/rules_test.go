package draft

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	leaderA = "leader-a"
	leaderB = "leader-b"
	boss    = "boss"
	nowMs   = int64(1_000_000)
)

func testUnits(n int) []Unit {
	elements := []string{"Fire", "Water", "Earth", "Wind"}
	units := make([]Unit, n)
	for i := range units {
		units[i] = Unit{
			ID:      fmt.Sprintf("u%d", i+1),
			Name:    fmt.Sprintf("Unit %d", i+1),
			Element: elements[i%len(elements)],
		}
	}
	return units
}

func seededDraft(format Format) *Draft {
	d := &Draft{
		ID:           "d1",
		Format:       format,
		Units:        testUnits(20),
		Participants: []string{leaderA, leaderB},
		Roles: map[string]Role{
			leaderA: RoleSideA,
			leaderB: RoleSideB,
			boss:    RoleAdmin,
		},
		SideLeaders: map[Side]string{SideA: leaderA, SideB: leaderB},
		Config:      Config{TimerDurationMs: 30_000},
	}
	if format.Duel() {
		d.Status = StatusCoinFlip
		d.CoinFlip = &CoinFlipState{Phase: FlipDone}
	} else {
		d.Status = StatusAssignment
	}
	return d
}

func activeDraft(t *testing.T, format Format) *Draft {
	t.Helper()
	d := seededDraft(format)
	changed, err := d.Finalize([]string{"CODE1", "CODE2", "CODE3"}, nowMs)
	require.NoError(t, err)
	require.True(t, changed)
	if format == FormatDuelBlind {
		require.True(t, d.Tick(nowMs+ShuffleRevealMs), "Pool reveal should advance once due")
		require.Equal(t, StatusActive, d.Status)
	}
	return d
}

func TestSelectWrongTurnRejectedBeforeExclusivity(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.Equal(t, TurnSideA, d.CurrentTurn)

	// Two leaders race for u7 while side A holds the turn: side B's call
	// fails on turn ownership, before the unit's availability even matters.
	err := d.Select(leaderB, SideB, "u7")
	assert.True(t, IsValidation(err, KindNotYourTurn))

	assert.NoError(t, d.Select(leaderA, SideA, "u7"))
	assert.Equal(t, []string{"u7"}, d.SideASelections)
	assert.Empty(t, d.SideBSelections)
}

func TestSelectExclusivity(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))

	err := d.Select(leaderB, SideB, "u1")
	assert.True(t, IsValidation(err, KindUnitUnavailable), "A unit picked by one side is gone for the other")
}

func TestSelectRequiresLeader(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	err := d.Select("random-spectator", SideA, "u1")
	assert.True(t, IsValidation(err, KindNotLeader))

	// The admin may select on a side's behalf.
	assert.NoError(t, d.Select(boss, SideA, "u1"))
}

func TestSelectQuotaAndConfirmLock(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	assert.True(t, d.AwaitingLock, "Phase 0 requires one pick")

	err := d.Select(leaderA, SideA, "u2")
	assert.True(t, IsValidation(err, KindQuotaMet))

	err = d.ConfirmLock(leaderB, nowMs)
	assert.True(t, IsValidation(err, KindNotLeader), "Only the acting side's leader confirms")

	require.NoError(t, d.ConfirmLock(leaderA, nowMs))
	assert.Equal(t, []int{0}, d.LockedPhases)
	assert.Equal(t, 1, d.CurrentPhase)
	assert.Equal(t, TurnSideB, d.CurrentTurn)
	assert.Zero(t, d.SelectionsInPhase)
	assert.False(t, d.AwaitingLock)
	assert.Equal(t, nowMs+PrepWindowMs, d.PrepUntilMs)
	assert.Zero(t, d.TurnDeadlineMs, "Clock must not run during the preparation window")
}

func TestConfirmLockWithoutPendingIsStateError(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	var violation *StateError
	assert.ErrorAs(t, d.ConfirmLock(leaderA, nowMs), &violation)
}

func TestRemoveRoundTrip(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.True(t, d.AwaitingLock)

	require.NoError(t, d.Remove(leaderA, SideA, 0))
	assert.False(t, d.AwaitingLock, "Removal clears the pending confirmation")
	assert.Zero(t, d.SelectionsInPhase)
	assert.Empty(t, d.SideASelections)

	// Re-selecting the same unit restores the pre-removal state exactly.
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	assert.Equal(t, []string{"u1"}, d.SideASelections)
	assert.Equal(t, 1, d.SelectionsInPhase)
	assert.True(t, d.AwaitingLock)
}

func TestRemoveLockedSelectionRejected(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))

	require.NoError(t, d.Select(leaderB, SideB, "u2"))
	err := d.Remove(leaderA, SideA, 0)
	assert.Error(t, err, "Selections of a locked phase are immutable")
	assert.Equal(t, []string{"u1"}, d.SideASelections)
}

func TestLockMonotonicityOverFullDraft(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	phases := Phases(FormatSwissA)
	next := 1

	prevLocked := 0
	for i, phase := range phases {
		leader := leaderA
		side := SideA
		if phase.Side == TurnSideB {
			leader = leaderB
			side = SideB
		}
		for j := 0; j < phase.Required; j++ {
			require.NoError(t, d.Select(leader, side, fmt.Sprintf("u%d", next)))
			next++
		}
		require.NoError(t, d.ConfirmLock(leader, nowMs))
		assert.Greater(t, len(d.LockedPhases), prevLocked, "Locked set never shrinks")
		prevLocked = len(d.LockedPhases)
		assert.True(t, d.Locked(i))
	}

	assert.Equal(t, StatusCompleted, d.Status)
	assert.Len(t, d.SideASelections, RosterSize(FormatSwissA, SideA))
	assert.Len(t, d.SideBSelections, RosterSize(FormatSwissA, SideB))
	for _, id := range d.SideASelections {
		assert.NotContains(t, d.SideBSelections, id, "Exclusive formats never share a unit")
	}
}

func TestCompletedDraftRejectsFurtherActions(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	d.Status = StatusCompleted
	assert.True(t, IsValidation(d.Select(leaderA, SideA, "u1"), KindWrongStatus))
	assert.True(t, IsValidation(d.Remove(leaderA, SideA, 0), KindWrongStatus))
}

func TestBanSameElementPerSideOnly(t *testing.T) {
	d := activeDraft(t, FormatDuelBan)
	// u1 and u5 share the Fire element in the test roster.
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))

	require.NoError(t, d.Select(leaderB, SideB, "u2"))
	require.NoError(t, d.ConfirmLock(leaderB, nowMs))

	err := d.Select(leaderA, SideA, "u5")
	assert.True(t, IsValidation(err, KindSameElementBan), "Second Fire ban by the same side is rejected")

	require.NoError(t, d.Select(leaderA, SideA, "u3"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))

	// The element rule is per side: side B may still ban a Fire unit.
	require.NoError(t, d.Select(leaderB, SideB, "u5"))
	require.NoError(t, d.ConfirmLock(leaderB, nowMs))

	assert.ElementsMatch(t, []string{"u1", "u2", "u3", "u5"}, d.Ban.BannedUnits)
	assert.Equal(t, []string{"u1", "u3"}, d.Ban.SideABans)
	assert.Equal(t, []string{"u2", "u5"}, d.Ban.SideBBans)
}

func TestBanUnionInvariant(t *testing.T) {
	d := activeDraft(t, FormatDuelBan)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))
	require.NoError(t, d.Select(leaderB, SideB, "u2"))

	union := append(append([]string{}, d.Ban.SideABans...), d.Ban.SideBBans...)
	assert.ElementsMatch(t, union, d.Ban.BannedUnits)

	err := d.Select(leaderA, SideA, "u2")
	assert.True(t, IsValidation(err, KindNotYourTurn))
}

func TestBanPicksNotGloballyExclusive(t *testing.T) {
	d := activeDraft(t, FormatDuelBan)
	// Burn through the four ban phases.
	for _, step := range []struct {
		leader string
		side   Side
		unit   string
	}{
		{leaderA, SideA, "u1"},
		{leaderB, SideB, "u2"},
		{leaderA, SideA, "u3"},
		{leaderB, SideB, "u4"},
	} {
		require.NoError(t, d.Select(step.leader, step.side, step.unit))
		require.NoError(t, d.ConfirmLock(step.leader, nowMs))
	}

	// Picks: a banned unit is out for everyone, but both sides may field
	// the same unbanned unit.
	err := d.Select(leaderA, SideA, "u1")
	assert.True(t, IsValidation(err, KindUnitUnavailable))

	require.NoError(t, d.Select(leaderA, SideA, "u9"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))

	require.NoError(t, d.Select(leaderB, SideB, "u9"))
	assert.Contains(t, d.SideASelections, "u9")
	assert.Contains(t, d.SideBSelections, "u9")

	// But never twice on the same roster.
	err = d.Select(leaderB, SideB, "u9")
	assert.True(t, IsValidation(err, KindUnitUnavailable))
}

func TestTimeoutForceFillAndLock(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.NoError(t, d.ConfirmLock(leaderA, nowMs))

	// Arm side B's clock after the preparation window.
	armAt := d.PrepUntilMs
	require.True(t, d.Tick(armAt))
	require.Equal(t, armAt+d.Config.TimerDurationMs, d.TurnDeadlineMs)

	// One of two required picks made, then the clock runs out.
	require.NoError(t, d.Select(leaderB, SideB, "u2"))
	require.True(t, d.Tick(d.TurnDeadlineMs))

	assert.Len(t, d.SideBSelections, 2, "Force-advance fills the open quota with a random legal unit")
	assert.True(t, d.Locked(1), "Expired phase is locked without confirmation")
	assert.Equal(t, 2, d.CurrentPhase)
	assert.Equal(t, TurnSideA, d.CurrentTurn)
	assert.NotContains(t, d.SideBSelections[1:], "u1", "Auto-fill only draws legal units")
	assert.False(t, d.AwaitingLock)
}

func TestTimeoutWhileAwaitingLockSkipsToForceLock(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))
	require.True(t, d.AwaitingLock)
	d.PrepUntilMs = 0
	d.TurnDeadlineMs = nowMs + 100

	require.True(t, d.Tick(nowMs+100))
	assert.Equal(t, []string{"u1"}, d.SideASelections, "No extra units are drawn when the quota was met")
	assert.True(t, d.Locked(0))
	assert.Equal(t, 1, d.CurrentPhase)
}

func TestTickIdleDuringPrepWindowAndManualStart(t *testing.T) {
	d := activeDraft(t, FormatSwissA)
	assert.False(t, d.Tick(nowMs+1), "Nothing is due inside the preparation window")

	d.Config.ManualTimerStart = true
	assert.False(t, d.Tick(d.PrepUntilMs+1), "Manual-start drafts never arm on their own")

	require.NoError(t, d.StartTimer(leaderA, nowMs+10_000))
	assert.Equal(t, nowMs+10_000+d.Config.TimerDurationMs, d.TurnDeadlineMs)
}

func TestTickIgnoresNonActiveDrafts(t *testing.T) {
	d := seededDraft(FormatSwissA)
	assert.False(t, d.Tick(nowMs+1_000_000))
	assert.Equal(t, StatusAssignment, d.Status)
}

func TestBlindSelectionRules(t *testing.T) {
	d := activeDraft(t, FormatDuelBlind)
	require.Len(t, d.Blind.PoolA, BlindPoolSize)
	require.Len(t, d.Blind.PoolB, BlindPoolSize)
	for _, id := range d.Blind.PoolA {
		assert.NotContains(t, d.Blind.PoolB, id, "Dealt pools are disjoint")
	}

	outside := d.Blind.PoolB[0]
	err := d.Select(leaderA, SideA, outside)
	assert.True(t, IsValidation(err, KindUnitUnavailable), "Only units from the own pool are selectable")

	for i := 0; i < BlindPickCap; i++ {
		require.NoError(t, d.Select(leaderA, SideA, d.Blind.PoolA[i]))
	}
	err = d.Select(leaderA, SideA, d.Blind.PoolA[3])
	assert.True(t, IsValidation(err, KindQuotaMet))

	err = d.Select("stranger", SideB, d.Blind.PoolB[0])
	assert.True(t, IsValidation(err, KindNotParticipant))
}

func TestBlindCompletionExactlyOnce(t *testing.T) {
	d := activeDraft(t, FormatDuelBlind)
	for i := 0; i < BlindPickCap; i++ {
		require.NoError(t, d.Select(leaderA, SideA, d.Blind.PoolA[i]))
		require.NoError(t, d.Select(leaderB, SideB, d.Blind.PoolB[i]))
	}

	require.NoError(t, d.LockSide(leaderA, SideA))
	assert.Equal(t, StatusActive, d.Status, "One side locking does not complete the draft")

	require.NoError(t, d.LockSide(leaderB, SideB))
	assert.Equal(t, StatusCompleted, d.Status)

	// Duplicate locks after completion are harmless no-ops.
	assert.NoError(t, d.LockSide(leaderA, SideA))
	assert.Equal(t, StatusCompleted, d.Status)
}

func TestBlindTimeoutFillsAndLocks(t *testing.T) {
	d := activeDraft(t, FormatDuelBlind)
	require.NoError(t, d.Select(leaderA, SideA, d.Blind.PoolA[0]))

	deadline := d.Blind.DeadlineAMs
	require.NotZero(t, deadline)
	d.Blind.DeadlineBMs = deadline

	require.True(t, d.Tick(deadline))
	assert.Len(t, d.SideASelections, BlindPickCap)
	assert.Len(t, d.SideBSelections, BlindPickCap)
	assert.True(t, d.Blind.LockedA)
	assert.True(t, d.Blind.LockedB)
	assert.Equal(t, StatusCompleted, d.Status)
	for _, id := range d.SideASelections {
		assert.Contains(t, d.Blind.PoolA, id)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	d := seededDraft(FormatSwissA)
	codes := []string{"AAA", "BBB", "CCC"}
	changed, err := d.Finalize(codes, nowMs)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, StatusActive, d.Status)
	assert.Equal(t, codes, d.BattleCodes)

	// The racing duplicate observes the post-active status and changes
	// nothing, including the generated codes.
	changed, err = d.Finalize([]string{"XXX", "YYY", "ZZZ"}, nowMs+5)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, codes, d.BattleCodes)
}

func TestFinalizeRequiresSeededLobby(t *testing.T) {
	d := seededDraft(FormatSwissA)
	d.Status = StatusWaiting
	_, err := d.Finalize([]string{"AAA"}, nowMs)
	assert.True(t, IsValidation(err, KindWrongStatus))

	d = seededDraft(FormatDuelBan)
	d.CoinFlip.Phase = FlipTurnChoice
	_, err = d.Finalize([]string{"AAA"}, nowMs)
	assert.True(t, IsValidation(err, KindWrongStatus), "Finalize waits for the coin flip")

	d = seededDraft(FormatSwissA)
	d.SideLeaders[SideB] = ""
	var violation *StateError
	_, err = d.Finalize([]string{"AAA"}, nowMs)
	assert.ErrorAs(t, err, &violation, "A missing leader blocks finalize entirely")
}

func TestJoinSlotFlow(t *testing.T) {
	d := &Draft{
		ID:     "d2",
		Format: FormatDuelBan,
		Status: StatusWaiting,
		Units:  testUnits(20),
	}
	require.NoError(t, d.JoinSlot("p1"))
	assert.Equal(t, StatusWaiting, d.Status)

	err := d.JoinSlot("p1")
	assert.True(t, IsValidation(err, KindAlreadyJoined))

	require.NoError(t, d.JoinSlot("p2"))
	assert.Equal(t, StatusCoinFlip, d.Status, "Filling the second slot starts the coin flip")
	assert.Equal(t, FlipWaiting, d.CoinFlip.Phase)

	err = d.JoinSlot("p3")
	assert.True(t, IsValidation(err, KindWrongStatus), "The lobby closed when both slots filled")
}

func TestShuffleAssignBalanced(t *testing.T) {
	d := &Draft{ID: "d3", Format: FormatSwissA, Status: StatusWaiting, Units: testUnits(20)}
	participants := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	require.NoError(t, d.ShuffleAssign(participants))

	assert.Equal(t, StatusAssignment, d.Status)
	countA, countB := 0, 0
	for _, uid := range participants {
		switch d.Roles[uid] {
		case RoleSideA:
			countA++
		case RoleSideB:
			countB++
		default:
			t.Fatalf("participant %s was not assigned a side", uid)
		}
	}
	assert.Equal(t, 3, countA)
	assert.Equal(t, 3, countB)
	assert.Equal(t, RoleSideA, d.Roles[d.SideLeaders[SideA]])
	assert.Equal(t, RoleSideB, d.Roles[d.SideLeaders[SideB]])
}

func TestResetClearsEverything(t *testing.T) {
	d := activeDraft(t, FormatDuelBan)
	require.NoError(t, d.Select(leaderA, SideA, "u1"))

	err := d.Reset(leaderA, false)
	assert.True(t, IsValidation(err, KindNotLeader))

	require.NoError(t, d.Reset(boss, false))
	assert.Equal(t, StatusWaiting, d.Status)
	assert.Empty(t, d.SideASelections)
	assert.Empty(t, d.LockedPhases)
	assert.Nil(t, d.Ban)
	assert.Nil(t, d.BattleCodes)
	assert.Zero(t, d.TurnDeadlineMs)
}
