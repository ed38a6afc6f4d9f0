// Package google provides OAuth2 authentication for the Gmail API.
//
// The OAuth client comes from a Google Cloud "installed application"
// credentials file. Tokens are stored per account as JSON under the user
// cache directory and are refreshed transparently; a refreshed token is
// written back to the store.
package google
