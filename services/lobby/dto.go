package lobby

import "github.com/nvbf/draft-sync/pkg/draft"

// CreateRequest is the organizer's draft creation payload. Optional fields
// fall back to the service defaults.
type CreateRequest struct {
	Format           draft.Format `json:"format" binding:"required"`
	Units            []draft.Unit `json:"units" binding:"required"`
	Participants     []string     `json:"participants"`
	TimerDurationMs  *int64       `json:"timerDurationMs"`
	ManualTimerStart bool         `json:"manualTimerStart"`
	IsFriendly       bool         `json:"isFriendly"`
	EntryFee         *int64       `json:"entryFee"`
	PoolAmount       *int64       `json:"poolAmount"`
}

// ShuffleRequest optionally overrides the eligible participant pool.
type ShuffleRequest struct {
	Participants []string `json:"participants"`
}
