// Package pipeline turns slide sources into the assembled deck document.
//
// Stages:
//   - Markdown preprocessing (line endings, ==highlight== syntax, slide splitting)
//   - Markdown to HTML fragments via Goldmark
//   - Slide extraction from existing HTML decks via goquery
//   - Relative path rewriting so the headless browser can load local images
//   - Rendering of the final document from the deck template
//
// Capture and export happen in the root slidedeck package; this package only
// deals with markup.
package pipeline
