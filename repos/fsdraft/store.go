package fsdraft

import (
	"context"
	"errors"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"golang.org/x/xerrors"

	"github.com/nvbf/draft-sync/pkg/draft"
)

const collection = "Drafts"

// ErrNoChange lets a transaction body signal that nothing was due; the store
// then commits no write. Used by the supervisor so that many observers can
// race over the same draft without churning the document.
var ErrNoChange = errors.New("no change")

// Store is the Firestore-backed draft state store: one document per draft,
// mutated only through atomic read-modify-write transactions, observed by any
// number of snapshot subscribers.
type Store struct {
	Client *firestore.Client
}

// NewStore creates a new store on top of a Firestore client.
func NewStore(client *firestore.Client) *Store {
	return &Store{Client: client}
}

func (s *Store) doc(draftID string) *firestore.DocumentRef {
	return s.Client.Collection(collection).Doc(draftID)
}

// Create writes a brand-new draft document.
func (s *Store) Create(ctx context.Context, d *draft.Draft) error {
	_, err := s.doc(d.ID).Create(ctx, d)
	if err != nil {
		log.Printf("Failed to create draft %s in Firestore: %v\n", d.ID, err)
	}
	return err
}

// Get fetches the current committed state of a draft.
func (s *Store) Get(ctx context.Context, draftID string) (*draft.Draft, error) {
	doc, err := s.doc(draftID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(doc)
}

func decode(doc *firestore.DocumentSnapshot) (*draft.Draft, error) {
	var d draft.Draft
	if err := doc.DataTo(&d); err != nil {
		// If this fails, we have an inconsistency error as we control both
		// the data written to Firestore and the shape of our draft struct.
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to draft struct failed: %w",
			doc.Ref.ID,
			err,
		)
	}
	return &d, nil
}

// Transact runs fn against the authoritative draft state inside one atomic
// transaction. fn receives the transaction as well, so collaborating writes
// (wallet debits) can ride the same commit.
//
// Exclusivity losses surface as ConcurrencyError: when a first attempt passed
// validation but the commit was contended and the retry now finds the unit
// taken, the caller lost the race rather than made an invalid request.
func (s *Store) Transact(ctx context.Context, draftID string, fn func(tx *firestore.Transaction, d *draft.Draft) error) (*draft.Draft, error) {
	var result *draft.Draft
	attempt := 0
	err := s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		attempt++
		doc, err := tx.Get(s.doc(draftID))
		if status.Code(err) == codes.NotFound {
			return draft.ErrNotFound
		}
		if err != nil {
			return err
		}
		d, err := decode(doc)
		if err != nil {
			return err
		}
		if err := fn(tx, d); err != nil {
			if attempt > 1 && draft.IsValidation(err, draft.KindUnitUnavailable) {
				return &draft.ConcurrencyError{Msg: "lost a concurrent selection race: " + err.Error()}
			}
			return err
		}
		result = d
		return tx.Set(s.doc(draftID), d)
	})
	if errors.Is(err, ErrNoChange) {
		return nil, ErrNoChange
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Pending lists the ids of drafts in a status the supervisor has to watch:
// coin flips mid-spin, pool reveals, and active turn clocks.
func (s *Store) Pending(ctx context.Context) ([]string, error) {
	iter := s.Client.Collection(collection).
		Where("status", "in", []string{
			string(draft.StatusCoinFlip),
			string(draft.StatusPoolShuffle),
			string(draft.StatusActive),
		}).
		Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// Watch subscribes to pushed snapshots of one draft until ctx is cancelled.
// Delivery is eventual; callers must treat each snapshot as the new
// authoritative state, never as a delta.
func (s *Store) Watch(ctx context.Context, draftID string, onChange func(*draft.Draft)) {
	go func() {
		snapshots := s.doc(draftID).Snapshots(ctx)
		defer snapshots.Stop()
		for {
			snapshot, err := snapshots.Next()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Snapshot stream for draft %s ended: %v\n", draftID, err)
				}
				return
			}
			if !snapshot.Exists() {
				continue
			}
			d, err := decode(snapshot)
			if err != nil {
				log.Printf("Failed to decode draft snapshot: %v\n", err)
				continue
			}
			onChange(d)
		}
	}()
}
