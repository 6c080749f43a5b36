package coinflip

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/nvbf/draft-sync/pkg/draft"
	timehelper "github.com/nvbf/draft-sync/pkg/timehelper"
	"github.com/nvbf/draft-sync/repos/fsdraft"
)

// CoinFlipService seeds the acting order of 1v1 drafts: both leaders ready
// up, the outcome is drawn the instant the second one commits, and the winner
// chooses whether to act first.
type CoinFlipService struct {
	store *fsdraft.Store
}

// NewCoinFlipService creates a new coin flip service.
func NewCoinFlipService(store *fsdraft.Store) *CoinFlipService {
	return &CoinFlipService{store: store}
}

// Ready marks the calling leader ready.
func (s *CoinFlipService) Ready(ctx context.Context, draftID, actor string) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.CoinFlipReady(actor, timehelper.NowMs())
	})
}

// Choose records the winning leader's order choice.
func (s *CoinFlipService) Choose(ctx context.Context, draftID, actor string, choice draft.TurnChoice) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.CoinFlipChoose(actor, choice)
	})
}

// Cancel returns the lobby to Waiting. Admin only.
func (s *CoinFlipService) Cancel(ctx context.Context, draftID, actor string) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.CoinFlipCancel(actor)
	})
}
