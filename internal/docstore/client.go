// Package docstore implements the storefront ports on Cloud Firestore.
//
// Layout, shared with the web storefront:
//
//	artifacts/{appID}/public/data/products/{productID}
//	artifacts/{appID}/users/{uid}/cart/{productID}
package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewClient connects to Firestore. An empty credentialsFile uses Application Default Credentials;
// FIRESTORE_EMULATOR_HOST is honoured by the client library.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}

	return client, nil
}

type namespace struct {
	client *firestore.Client
	appID  string
}

func (n namespace) app() *firestore.DocumentRef {
	return n.client.Collection("artifacts").Doc(n.appID)
}

func (n namespace) products() *firestore.CollectionRef {
	return n.app().Collection("public").Doc("data").Collection("products")
}

func (n namespace) cart(uid string) *firestore.CollectionRef {
	return n.app().Collection("users").Doc(uid).Collection("cart")
}
