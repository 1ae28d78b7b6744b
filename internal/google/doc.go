// Package google provides OAuth2 authentication and token management for
// the Google Calendar API.
//
// Tokens are stored per account as files in the user cache directory, which
// suits the STDIO transport where schedly runs as a local process. The
// TokenProvider interface allows other token sources to be plugged in for
// server deployments.
package google
