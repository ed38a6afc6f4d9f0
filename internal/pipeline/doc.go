// Package pipeline wires the mailbox, the summary model and the formatter
// together.
//
// A Scanner searches the mailbox for threads carrying the trigger (a label
// or a star), hands every qualifying message to a Processor and clears the
// trigger once the message was summarised. The Processor locates the first
// PDF attachment, uploads it, asks the model for a summary, formats the
// markdown answer as HTML and mails the result.
//
// Work is strictly sequential. A processing error aborts the scan and leaves
// the trigger in place, so the next scan retries the message.
package pipeline
