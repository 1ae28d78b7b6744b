package common

import (
	"context"

	"github.com/schedly/schedly/internal/google"
)

// GetAccountFromArgs extracts the account name from request arguments.
// Defaults to the "default" account when no account is given.
//
// Priority order:
//  1. Explicit "account" argument in request
//  2. "default"
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}
