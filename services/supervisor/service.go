package supervisor

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/nvbf/draft-sync/pkg/draft"
	timehelper "github.com/nvbf/draft-sync/pkg/timehelper"
	"github.com/nvbf/draft-sync/repos/fsdraft"
	resend "github.com/nvbf/draft-sync/repos/resend"
)

// SweepInterval is how often deadlines are checked. The draft's Tick is
// idempotent, so overlapping sweeps from several instances are harmless.
const SweepInterval = time.Second

// SupervisorService owns the authoritative deadlines: it force-advances
// expired turns, arms clocks after preparation windows, and drives the
// time-gated coin-flip and pool-reveal stages.
type SupervisorService struct {
	store         *fsdraft.Store
	resendService *resend.Service
}

// NewSupervisorService creates a new supervisor.
func NewSupervisorService(store *fsdraft.Store, resendService *resend.Service) *SupervisorService {
	return &SupervisorService{
		store:         store,
		resendService: resendService,
	}
}

// Run sweeps until ctx is cancelled.
func (s *SupervisorService) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep advances every due transition exactly once. Drafts where nothing is
// due commit no write at all.
func (s *SupervisorService) Sweep(ctx context.Context) {
	ids, err := s.store.Pending(ctx)
	if err != nil {
		log.Printf("Failed to list pending drafts: %v\n", err)
		return
	}
	for _, id := range ids {
		d, err := s.store.Transact(ctx, id, func(tx *firestore.Transaction, d *draft.Draft) error {
			if !d.Tick(timehelper.NowMs()) {
				return fsdraft.ErrNoChange
			}
			return nil
		})
		if err == fsdraft.ErrNoChange {
			continue
		}
		if err != nil {
			log.Printf("Failed to advance draft %s: %v\n", id, err)
			continue
		}
		log.Printf("Supervisor advanced draft %s to %s\n", id, d.Status)
		if d.Status == draft.StatusCompleted {
			go s.resendService.MatchCompleted(context.Background(), d.Participants, resend.MatchNotification{
				DraftID:     d.ID,
				Format:      string(d.Format),
				BattleCodes: d.BattleCodes,
			})
		}
	}
}
