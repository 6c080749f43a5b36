package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogRosterSums(t *testing.T) {
	for _, format := range []Format{FormatSwissA, FormatSwissB, FormatDuelBan} {
		for _, side := range []Side{SideA, SideB} {
			total := 0
			for _, phase := range Phases(format) {
				if !phase.IsBan && phase.Side.Holds(side) {
					total += phase.Required
				}
			}
			assert.Equal(t, RosterSize(format, side), total,
				"Pick quotas for %s side %s should sum to the roster size", format, side)
		}
	}
}

func TestCatalogSidesBalanced(t *testing.T) {
	for _, format := range []Format{FormatSwissA, FormatSwissB, FormatDuelBan} {
		assert.Equal(t, RosterSize(format, SideA), RosterSize(format, SideB),
			"Both sides of %s should draft the same roster size", format)
	}
}

func TestCatalogBansPrecedePicks(t *testing.T) {
	seenPick := false
	for _, phase := range Phases(FormatDuelBan) {
		if !phase.IsBan {
			seenPick = true
		}
		if phase.IsBan {
			assert.False(t, seenPick, "All ban phases should come before the first pick phase")
		}
	}
}

func TestCatalogStartsWithSideA(t *testing.T) {
	// Side A is by definition the side that won the right to act first.
	for _, format := range []Format{FormatSwissA, FormatSwissB, FormatDuelBan} {
		assert.Equal(t, TurnSideA, Phases(format)[0].Side)
	}
}

func TestCatalogBlindHasNoPhases(t *testing.T) {
	assert.Empty(t, Phases(FormatDuelBlind), "DuelBlind runs on pool membership, not phases")
	assert.Equal(t, BlindPickCap, RosterSize(FormatDuelBlind, SideA))
}
