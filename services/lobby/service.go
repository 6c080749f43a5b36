package lobby

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/samborkent/uuidv7"
	"github.com/xorcare/pointer"

	"github.com/nvbf/draft-sync/pkg/draft"
	"github.com/nvbf/draft-sync/pkg/matchcode"
	timehelper "github.com/nvbf/draft-sync/pkg/timehelper"
	"github.com/nvbf/draft-sync/repos/fsdraft"
	resend "github.com/nvbf/draft-sync/repos/resend"
	wallet "github.com/nvbf/draft-sync/repos/wallet"
)

const defaultTimerDurationMs = 60_000

// LobbyService seeds drafts: creation, the open-slot join flow, the roster
// shuffle, and the one-shot finalization into an active match.
type LobbyService struct {
	store         *fsdraft.Store
	walletService *wallet.Service
	resendService *resend.Service
}

// NewLobbyService creates a new lobby service.
func NewLobbyService(store *fsdraft.Store, walletService *wallet.Service, resendService *resend.Service) *LobbyService {
	return &LobbyService{
		store:         store,
		walletService: walletService,
		resendService: resendService,
	}
}

// Create writes a fresh draft in Waiting. The organizer holds the admin role
// on the document.
func (s *LobbyService) Create(ctx context.Context, organizer string, request CreateRequest) (*draft.Draft, error) {
	if request.TimerDurationMs == nil {
		request.TimerDurationMs = pointer.Int64(defaultTimerDurationMs)
	}
	if request.EntryFee == nil {
		request.EntryFee = pointer.Int64(0)
	}
	if request.PoolAmount == nil {
		request.PoolAmount = pointer.Int64(0)
	}
	minUnits := draft.RosterSize(request.Format, draft.SideA) + draft.RosterSize(request.Format, draft.SideB)
	if request.Format == draft.FormatDuelBlind {
		minUnits = 2 * draft.BlindPoolSize
	}
	if len(request.Units) < minUnits {
		return nil, fmt.Errorf("unit roster too small for format %s", request.Format)
	}

	d := &draft.Draft{
		ID:        uuidv7.New().String(),
		Format:    request.Format,
		Status:    draft.StatusWaiting,
		CreatedBy: organizer,
		Config: draft.Config{
			TimerDurationMs:  *request.TimerDurationMs,
			ManualTimerStart: request.ManualTimerStart,
			IsFriendly:       request.IsFriendly,
			EntryFee:         *request.EntryFee,
			PoolAmount:       *request.PoolAmount,
		},
		Units:        request.Units,
		Participants: request.Participants,
		Roles:        map[string]draft.Role{organizer: draft.RoleAdmin},
		SideLeaders:  map[draft.Side]string{},
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Join atomically claims an open leader slot. On staked lobbies the entry fee
// is debited in the same transaction, so a failed debit also voids the claim.
func (s *LobbyService) Join(ctx context.Context, draftID, uid string) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		if err := d.JoinSlot(uid); err != nil {
			return err
		}
		if !d.Config.IsFriendly && d.Config.EntryFee > 0 {
			memo := fmt.Sprintf("entry stake for draft %s", d.ID)
			if err := s.walletService.DebitTx(tx, uid, d.Config.EntryFee, memo); err != nil {
				return err
			}
		}
		return nil
	})
}

// Shuffle randomly partitions the lobby's participants into two balanced
// sides for the team formats.
func (s *LobbyService) Shuffle(ctx context.Context, draftID, actor string, request ShuffleRequest) (*draft.Draft, error) {
	return s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		if !d.Admin(actor) {
			return &draft.ValidationError{Kind: draft.KindNotLeader, Msg: "only an admin may assign sides"}
		}
		participants := request.Participants
		if len(participants) == 0 {
			participants = d.Participants
		}
		return d.ShuffleAssign(participants)
	})
}

// Finalize commits the transition into the active draft exactly once. Racing
// duplicate calls observe "already processed" and change nothing.
func (s *LobbyService) Finalize(ctx context.Context, draftID string) (*draft.Draft, bool, error) {
	changed := false
	codes := matchcode.GenerateSet(matchcode.BattleCodeCount)
	d, err := s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		var err error
		changed, err = d.Finalize(codes, timehelper.NowMs())
		if err != nil {
			return err
		}
		if !changed {
			return fsdraft.ErrNoChange
		}
		return nil
	})
	if err == fsdraft.ErrNoChange {
		current, getErr := s.store.Get(ctx, draftID)
		return current, false, getErr
	}
	if err != nil {
		return nil, false, err
	}

	log.Printf("Draft %s finalized into %s\n", draftID, d.Status)
	go s.resendService.MatchStarted(context.Background(), d.Participants, resend.MatchNotification{
		DraftID:     d.ID,
		Format:      string(d.Format),
		BattleCodes: d.BattleCodes,
	})
	return d, true, nil
}

// Advance drives the time-gated PoolShuffle transition into Active. Safe
// under duplicate concurrent invocation.
func (s *LobbyService) Advance(ctx context.Context, draftID, actor string) (*draft.Draft, error) {
	d, err := s.store.Transact(ctx, draftID, func(tx *firestore.Transaction, d *draft.Draft) error {
		return d.AdvancePoolShuffle(actor, timehelper.NowMs())
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
