package services

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseNames adapts the Firebase Auth client to AuthNames.
type FirebaseNames struct {
	client *fbauth.Client
}

func NewFirebaseNames(client *fbauth.Client) *FirebaseNames {
	return &FirebaseNames{client: client}
}

func (f *FirebaseNames) DisplayName(ctx context.Context, uid string) (string, error) {
	user, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}
