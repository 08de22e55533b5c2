// Package detection turns recognized overlay text into typed match events.
//
// Three classifiers cover the overlays a football-management game shows
// during a match:
//
//   - GoalClassifier: "GOAL FOR ARSENAL", "GOL Barcelona"
//   - KickoffClassifier: "Kick Off", "Anstoß"
//   - MatchEndClassifier: "Full Time 3-1", parsing the score
//
// Each one matches phrases from a per-language Catalog. A phrase counts as
// an exact match when it appears as whole words. A longer phrase glued to
// neighbouring letters or digits ("XGOAL FOR") still matches but earns a
// lower confidence. Spacing and punctuation are never ignored.
//
// # Confidence Scores
//
// Results carry a confidence between 0.0 and 1.0, rounded to three
// decimals:
//   - Goal: 0.70, +0.15 for a HOME/AWAY token, +0.15 for an exact phrase
//   - Kickoff: 0.80, or 0.95 for an exact phrase
//   - MatchEnd: 0.70, +0.20 when a score parses, +0.10 for an exact phrase
//
// # Team Matching
//
// TeamMatcher compares an OCR'd team fragment with the name variations of a
// TeamProfile after normalizing both. See NormalizeTeamName.
package detection
