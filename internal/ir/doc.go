// Package ir provides the match record types exchanged across the rally
// engine boundary.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere: every counter is an int
//   - JSON tags use camelCase, the shape the display collaborator reads
//   - MatchState evolves by replacement; Clone before mutating
//   - StateHash uses RFC 8785 canonical JSON, never encoding/json output
package ir
