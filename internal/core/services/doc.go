// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The conversation pipeline runs normalise, chunk and index when a source
// is selected, then reformulate, retrieve and synthesise for each question.
package services
