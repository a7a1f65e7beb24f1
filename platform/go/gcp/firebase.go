package gcp

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const (
	// CredentialsPathEnv points at a service account file for local runs.
	CredentialsPathEnv = "FIREBASE_CONFIG"
	ProjectEnv         = "GCLOUD_PROJECT"
)

// GetApp creates a Firebase App instance. An empty credentialsPath uses application default credentials.
func GetApp(ctx context.Context, credentialsPath string) (*firebase.App, error) {
	var opts []option.ClientOption
	if p := strings.TrimSpace(credentialsPath); p != "" {
		opts = append(opts, option.WithCredentialsFile(p))
	}
	return firebase.NewApp(ctx, nil, opts...)
}

// InitFirebaseAuth initializes the Firebase App and returns an Auth client.
func InitFirebaseAuth(ctx context.Context, credentialsPath string) (*firebase.App, *firebaseauth.Client, error) {
	firebaseApp, err := GetApp(ctx, credentialsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app [%w]", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase auth [%w]", err)
	}

	return firebaseApp, fbAuth, nil
}
