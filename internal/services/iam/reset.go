package iam

import (
	"context"
	"log"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
)

// ResetNotifier delivers password reset tokens to account holders.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error
}

// LogResetNotifier writes reset requests to the server log. The raw token is
// only logged in debug mode so that local development works without mail.
type LogResetNotifier struct {
	Debug bool
}

// SendPasswordReset implements ResetNotifier.
func (n LogResetNotifier) SendPasswordReset(_ context.Context, user *models.User, token string, expiresAt time.Time) error {
	if n.Debug {
		log.Printf("password reset for %s (user %s): token=%s expires=%s", user.Email, user.ID, token, expiresAt.Format(time.RFC3339))
		return nil
	}
	log.Printf("password reset requested for user %s (expires %s)", user.ID, expiresAt.Format(time.RFC3339))
	return nil
}
