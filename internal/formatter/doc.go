// Package formatter turns the markdown-flavoured text returned by the summary
// model into an HTML fragment for the notification email.
//
// Only the constructs the model is observed to produce are recognised:
// headings (# to ####), **bold** spans, [text](url) links, bullet and
// numbered list items, and blank-line separated paragraphs. Each construct is
// handled by one named stage of Stages; the stages run in a fixed order
// because later ones match on HTML inserted by earlier ones.
//
// Example usage:
//
//	html := formatter.Format("# Key points\n\n- first\n- second")
//	// <h1>Key points</h1><ul><li>first</li><li>second</li></ul>
package formatter
