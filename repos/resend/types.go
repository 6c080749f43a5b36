package resend

// MatchNotification is the payload shared by the start and completion mails.
type MatchNotification struct {
	DraftID     string
	Format      string
	BattleCodes []string
}
