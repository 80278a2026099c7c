// Package pipeline turns spreadsheet cell data into printable HTML for the
// software renderer.
//
// Stages:
//   - value grid extraction with excelize, bounded per sheet
//   - grid to GitHub-Flavored Markdown tables
//   - Markdown to HTML via goldmark
//   - CSS injection (page geometry, fonts)
//
// PDF generation is handled by the root kinten package using headless
// Chrome (go-rod).
package pipeline
