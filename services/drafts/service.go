package drafts

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"

	"github.com/nvbf/draft-sync/pkg/draft"
	timehelper "github.com/nvbf/draft-sync/pkg/timehelper"
	"github.com/nvbf/draft-sync/repos/fsdraft"
	resend "github.com/nvbf/draft-sync/repos/resend"
)

// DraftsService runs the selection engine: every operation is one atomic
// transaction against the draft document.
type DraftsService struct {
	store         *fsdraft.Store
	resendService *resend.Service
}

// NewDraftsService creates a new selection engine service.
func NewDraftsService(store *fsdraft.Store, resendService *resend.Service) *DraftsService {
	return &DraftsService{
		store:         store,
		resendService: resendService,
	}
}

// Get returns the current committed draft state.
func (s *DraftsService) Get(ctx context.Context, draftID string) (*draft.Draft, error) {
	return s.store.Get(ctx, draftID)
}

// Watch subscribes onChange to pushed snapshots of the draft until ctx ends.
func (s *DraftsService) Watch(ctx context.Context, draftID string, onChange func(*draft.Draft)) {
	s.store.Watch(ctx, draftID, onChange)
}

// Select applies one pick or ban for the acting side.
func (s *DraftsService) Select(ctx context.Context, draftID, actor string, request SelectRequest) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.Select(actor, request.Side, request.UnitID)
	})
}

// Remove undoes a not-yet-locked selection.
func (s *DraftsService) Remove(ctx context.Context, draftID, actor string, request RemoveRequest) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.Remove(actor, request.Side, request.Index)
	})
}

// ConfirmLock locks the current phase and advances the turn.
func (s *DraftsService) ConfirmLock(ctx context.Context, draftID, actor string) (*draft.Draft, error) {
	d, err := s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.ConfirmLock(actor, timehelper.NowMs())
	})
	if err != nil {
		return nil, err
	}
	s.notifyIfCompleted(d)
	return d, nil
}

// LockSide commits one side's blind picks.
func (s *DraftsService) LockSide(ctx context.Context, draftID, actor string, request LockRequest) (*draft.Draft, error) {
	d, err := s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.LockSide(actor, request.Side)
	})
	if err != nil {
		return nil, err
	}
	s.notifyIfCompleted(d)
	return d, nil
}

// StartTimer arms the clock on manual-start drafts.
func (s *DraftsService) StartTimer(ctx context.Context, draftID, actor string) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.StartTimer(actor, timehelper.NowMs())
	})
}

func (s *DraftsService) notifyIfCompleted(d *draft.Draft) {
	if d == nil || d.Status != draft.StatusCompleted {
		return
	}
	log.Printf("Draft %s completed\n", d.ID)
	go s.resendService.MatchCompleted(context.Background(), d.Participants, resend.MatchNotification{
		DraftID:     d.ID,
		Format:      string(d.Format),
		BattleCodes: d.BattleCodes,
	})
}
