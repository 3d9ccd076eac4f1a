// Package pdf reads form fields from uploaded waiver templates and renders
// signed waiver documents.
//
// Field enumeration shells out to pdftk. Rendering is pure Go.
package pdf
