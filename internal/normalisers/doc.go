// Package normalisers provides implementations of the Normaliser interface
// for the three source kinds. Each normaliser turns one arm of a
// domain.Source into a plain-text domain.Document.
//
// Normalisers are registered with the Registry at startup, which dispatches
// each source exactly once by its kind.
package normalisers
