// Package planner selects which audio and text tracks to keep from a media
// report and bundles the result into a TrackPlan that the handbrake package
// turns into encoder arguments. Selection is pure and deterministic: same
// report, same preferences, same plan.
package planner
