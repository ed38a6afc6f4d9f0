package google

import gmail "google.golang.org/api/gmail/v1"

// DefaultOAuthScopes are the scopes inboxsummary requests.
//
// gmail.modify covers reading messages and attachments, changing labels and
// sending the summary email.
var DefaultOAuthScopes = []string{
	gmail.GmailModifyScope,
}
