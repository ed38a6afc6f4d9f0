// Package mail holds the mailbox-independent message types that flow through
// the summary pipeline, and the attachment locator used to pick the PDF that
// accompanies a summary request.
package mail
