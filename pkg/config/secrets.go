package config

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var secretAccessor = accessSecret

// accessSecret reads a Secret Manager secret. Names without a version use
// the latest one.
func accessSecret(ctx context.Context, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretVersionName(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret: %w", err)
	}

	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func secretVersionName(name string) string {
	if strings.Contains(name, "/versions/") {
		return name
	}
	return name + "/versions/latest"
}
