package admin

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"

	"github.com/nvbf/draft-sync/pkg/draft"
	"github.com/nvbf/draft-sync/repos/fsdraft"
	gamerecords "github.com/nvbf/draft-sync/repos/gamerecords"
)

// AdminService carries the administrator-only overrides: the destructive
// reset, and the verification proxy for completed drafts.
type AdminService struct {
	store          *fsdraft.Store
	recordsService *gamerecords.Service
}

// NewAdminService creates a new admin service.
func NewAdminService(store *fsdraft.Store, recordsService *gamerecords.Service) *AdminService {
	return &AdminService{
		store:          store,
		recordsService: recordsService,
	}
}

// Reset clears all selection, ban, pool, and lock state back to Waiting.
// Platform admins may reset any draft; otherwise the caller must hold the
// admin role on the document.
func (s *AdminService) Reset(ctx context.Context, draftID, actor string, platformAdmin bool) (*draft.Draft, error) {
	d, err := s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.Reset(actor, platformAdmin)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Draft %s reset by %s\n", draftID, actor)
	return d, nil
}

// Outcomes fetches the verified per-sub-match results for a completed draft
// from the external game-record service.
func (s *AdminService) Outcomes(ctx context.Context, draftID string) (*gamerecords.OutcomeResponse, error) {
	d, err := s.store.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Status != draft.StatusCompleted {
		return nil, &draft.ValidationError{Kind: draft.KindWrongStatus, Msg: "draft is not completed"}
	}
	return s.recordsService.FetchOutcomes(ctx, gamerecords.OutcomeRequest{
		DraftID:         d.ID,
		BattleCodes:     d.BattleCodes,
		SideASelections: d.SideASelections,
		SideBSelections: d.SideBSelections,
		SideALeader:     d.SideLeaders[draft.SideA],
		SideBLeader:     d.SideLeaders[draft.SideB],
	})
}
