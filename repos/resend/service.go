package resend

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	resend "github.com/resend/resend-go/v2"
)

// Service sends the fire-and-forget match notifications. Failures are logged
// and never block the transaction that triggered them.
type Service struct {
	firestoreClient *firestore.Client
	resendClient    *resend.Client
	hostURL         string
}

// NewService creates a new notification service.
func NewService(firestoreClient *firestore.Client, hostURL string) *Service {
	resendKey := os.Getenv("RESEND_KEY")
	return &Service{
		firestoreClient: firestoreClient,
		resendClient:    resend.NewClient(resendKey),
		hostURL:         hostURL,
	}
}

// MatchStarted mails all matched participants when their draft goes active.
func (s Service) MatchStarted(ctx context.Context, participants []string, notification MatchNotification) {
	subject := "Your draft has started"
	body := getMatchTemplate(
		"Your draft is live. Join your side before the first clock runs out.",
		fmt.Sprintf("%s/draft/%s", s.hostURL, notification.DraftID),
	)
	s.send(ctx, participants, subject, body)
}

// MatchCompleted mails the battle codes once the draft is locked in.
func (s Service) MatchCompleted(ctx context.Context, participants []string, notification MatchNotification) {
	subject := "Draft completed - your battle codes"
	body := getMatchTemplate(
		fmt.Sprintf("The draft is locked. Battle codes: %s", strings.Join(notification.BattleCodes, ", ")),
		fmt.Sprintf("%s/draft/%s/result", s.hostURL, notification.DraftID),
	)
	s.send(ctx, participants, subject, body)
}

func (s Service) send(ctx context.Context, participants []string, subject, body string) {
	emails := s.lookupEmails(ctx, participants)
	if len(emails) == 0 {
		log.Printf("No recipient emails resolved, skipping notification\n")
		return
	}
	params := &resend.SendEmailRequest{
		From:    "drafts@resend.dev",
		To:      emails,
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		log.Printf("Failed to send notification mail: %v\n", err)
	}
}

func (s Service) lookupEmails(ctx context.Context, uids []string) []string {
	var emails []string
	for _, uid := range uids {
		doc, err := s.firestoreClient.Collection("Players").Doc(uid).Get(ctx)
		if err != nil {
			log.Printf("Failed to get player %s from Firestore: %v\n", uid, err)
			continue
		}
		fieldValue, ok := doc.Data()["Email"]
		if !ok {
			log.Printf("Field 'Email' does not exist for player %s.\n", uid)
			continue
		}
		email, ok := fieldValue.(string)
		if !ok || email == "" {
			continue
		}
		emails = append(emails, email)
	}
	return emails
}

func getMatchTemplate(message, url string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
        .button {
            display: block;
            width: 200px;
            height: 50px;
            margin: 20px auto;
            background-color: #007BFF;
            color: #ffffff;
            font-size: 16px;
            text-align: center;
            line-height: 50px;
            text-decoration: none;
            border-radius: 5px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello,</h2>
        <p>%s</p>
        <a href="%s" class="button">Open Draft</a>
    </div>
</body>
</html>`, message, url)
}
