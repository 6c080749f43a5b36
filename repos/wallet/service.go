package wallet

import (
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nvbf/draft-sync/pkg/draft"
	timehelper "github.com/nvbf/draft-sync/pkg/timehelper"
)

const collection = "Wallets"

// Account is one user's wallet document.
type Account struct {
	Balance int64   `firestore:"balance"`
	Entries []Entry `firestore:"entries"`
}

// Entry is one ledger line.
type Entry struct {
	Amount      int64  `firestore:"amount"`
	Memo        string `firestore:"memo"`
	TimestampMs int64  `firestore:"timestampMs"`
}

// Service debits entry stakes. Debits always run inside the caller's draft
// transaction so a join and its stake commit or fail together.
type Service struct {
	firestoreClient *firestore.Client
}

// NewService creates a new wallet service.
func NewService(firestoreClient *firestore.Client) *Service {
	return &Service{firestoreClient: firestoreClient}
}

// DebitTx withdraws amount from the account as part of the surrounding
// transaction. An unknown account or a short balance both reject as
// insufficient funds.
func (s *Service) DebitTx(tx *firestore.Transaction, accountID string, amount int64, memo string) error {
	if amount <= 0 {
		return nil
	}
	docRef := s.firestoreClient.Collection(collection).Doc(accountID)
	doc, err := tx.Get(docRef)
	if status.Code(err) == codes.NotFound {
		return &draft.ValidationError{Kind: draft.KindInsufficientFunds, Msg: "no wallet for this account"}
	}
	if err != nil {
		return err
	}

	var account Account
	if err := doc.DataTo(&account); err != nil {
		log.Printf("Failed to decode wallet %s: %v\n", accountID, err)
		return err
	}
	if account.Balance < amount {
		return &draft.ValidationError{Kind: draft.KindInsufficientFunds, Msg: "insufficient funds"}
	}

	account.Balance -= amount
	account.Entries = append(account.Entries, Entry{
		Amount:      -amount,
		Memo:        memo,
		TimestampMs: timehelper.NowMs(),
	})
	return tx.Set(docRef, account)
}
