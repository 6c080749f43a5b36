package draft

import "strconv"

// Phase is one step of a format's fixed selection sequence: which side holds
// the turn, how many units it must commit, and whether the step bans or picks.
type Phase struct {
	Side     TurnHolder
	Required int
	IsBan    bool
	Label    string
}

var swissAOrder = []Phase{
	{Side: TurnSideA, Required: 1, Label: "Pick 1"},
	{Side: TurnSideB, Required: 2, Label: "Pick 2"},
	{Side: TurnSideA, Required: 2, Label: "Pick 3"},
	{Side: TurnSideB, Required: 2, Label: "Pick 4"},
	{Side: TurnSideA, Required: 2, Label: "Pick 5"},
	{Side: TurnSideB, Required: 2, Label: "Pick 6"},
	{Side: TurnSideA, Required: 1, Label: "Pick 7"},
}

var swissBOrder = func() []Phase {
	phases := make([]Phase, 0, 12)
	for i := 0; i < 12; i++ {
		side := TurnSideA
		if i%2 == 1 {
			side = TurnSideB
		}
		phases = append(phases, Phase{Side: side, Required: 1, Label: "Pick " + strconv.Itoa(i+1)})
	}
	return phases
}()

var duelBanOrder = []Phase{
	{Side: TurnSideA, Required: 1, IsBan: true, Label: "Ban 1"},
	{Side: TurnSideB, Required: 1, IsBan: true, Label: "Ban 2"},
	{Side: TurnSideA, Required: 1, IsBan: true, Label: "Ban 3"},
	{Side: TurnSideB, Required: 1, IsBan: true, Label: "Ban 4"},
	{Side: TurnSideA, Required: 1, Label: "Pick 1"},
	{Side: TurnSideB, Required: 2, Label: "Pick 2"},
	{Side: TurnSideA, Required: 2, Label: "Pick 3"},
	{Side: TurnSideB, Required: 2, Label: "Pick 4"},
	{Side: TurnSideA, Required: 2, Label: "Pick 5"},
	{Side: TurnSideB, Required: 1, Label: "Pick 6"},
}

// BlindPickCap is the shared per-side selection cap in DuelBlind, which runs
// on pool membership instead of a phase sequence.
const BlindPickCap = 3

// BlindPoolSize is how many units are dealt into each side's private pool.
const BlindPoolSize = 8

// Phases returns the ordered phase list for a format. DuelBlind has no phase
// sequence and returns nil.
func Phases(f Format) []Phase {
	switch f {
	case FormatSwissA:
		return swissAOrder
	case FormatSwissB:
		return swissBOrder
	case FormatDuelBan:
		return duelBanOrder
	default:
		return nil
	}
}

// RosterSize is the number of picks a side ends the draft with.
func RosterSize(f Format, s Side) int {
	if f == FormatDuelBlind {
		return BlindPickCap
	}
	total := 0
	for _, p := range Phases(f) {
		if p.IsBan || !p.Side.Holds(s) {
			continue
		}
		total += p.Required
	}
	return total
}
