// Package logging provides structured logging helpers for inboxsummary.
//
// Loggers are plain *slog.Logger values built by New. The helpers here keep
// attribute names consistent across the scanner, the Gmail client and the
// Gemini client.
//
// # Usage Patterns
//
//	logger, err := logging.New("info", logging.FormatJSON, os.Stderr)
//	if err != nil {
//		return err
//	}
//	logger = logging.WithRun(logger, runID)
//	logger.Info("summary sent", logging.MessageID(id), logging.UserHash(recipient))
//
// Email addresses are hashed by UserHash and secrets are reduced to a length
// by SanitizeToken.
package logging
