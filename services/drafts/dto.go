package drafts

import "github.com/nvbf/draft-sync/pkg/draft"

// SelectRequest is the JSON payload for a pick or ban.
type SelectRequest struct {
	Side   draft.Side `json:"side" binding:"required"`
	UnitID string     `json:"unitId" binding:"required"`
}

// RemoveRequest undoes a not-yet-locked selection by index.
type RemoveRequest struct {
	Side  draft.Side `json:"side" binding:"required"`
	Index int        `json:"index"`
}

// LockRequest is the DuelBlind per-side lock payload.
type LockRequest struct {
	Side draft.Side `json:"side" binding:"required"`
}
