// Package gmail is the mailbox used by inboxsummary, backed by the Gmail API.
//
// It searches threads, converts Gmail messages into mail.Message values
// (headers, plain and HTML bodies, attachment metadata), changes labels,
// downloads attachments and sends composed messages. Every API call is
// recorded as a google_api_operation metric and a google.gmail.<op> span.
//
// Example usage:
//
//	httpClient, err := google.NewHTTPClient(ctx, conf, store, "default")
//	if err != nil {
//		return err
//	}
//	client, err := gmail.NewClient(ctx, httpClient, "default")
//	if err != nil {
//		return err
//	}
//	err = client.ForeachThread(ctx, `label:"AI Summary"`, func(threadID string) error {
//		thread, err := client.GetThread(ctx, threadID)
//		...
//	})
package gmail
