package gcp

import (
	"context"
	"fmt"
	"sync"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// IdentityDeleter removes a user's sign-in identity from the auth provider.
type IdentityDeleter interface {
	DeleteIdentity(ctx context.Context, userID string) error
}

// firebaseUserDeleter is the subset of the Firebase Auth client used for deletion.
type firebaseUserDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseIdentityDeleter deletes Firebase Auth users.
type FirebaseIdentityDeleter struct {
	client firebaseUserDeleter
}

// NewFirebaseIdentityDeleter wraps a Firebase Auth client.
func NewFirebaseIdentityDeleter(client *firebaseauth.Client) *FirebaseIdentityDeleter {
	if client == nil {
		panic("firebase auth client is required")
	}
	return &FirebaseIdentityDeleter{client: client}
}

func (d *FirebaseIdentityDeleter) DeleteIdentity(ctx context.Context, userID string) error {
	if err := d.client.DeleteUser(ctx, userID); err != nil {
		// already gone counts as deleted
		if firebaseauth.IsUserNotFound(err) {
			return nil
		}
		return fmt.Errorf("delete firebase user %s: %w", userID, err)
	}
	return nil
}

// NoopIdentityDeleter records deletions without contacting a provider. Used with dev auth.
type NoopIdentityDeleter struct {
	mu      sync.Mutex
	deleted []string
}

func (d *NoopIdentityDeleter) DeleteIdentity(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, userID)
	return nil
}

// Deleted returns the user ids passed to DeleteIdentity in call order.
func (d *NoopIdentityDeleter) Deleted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.deleted...)
}
