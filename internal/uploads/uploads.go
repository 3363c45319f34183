// Package uploads defines the boundary to the storage area where the
// upload-handling subsystem places driver files. The photo reconciler only
// needs to enumerate a driver's files; it never writes to the store.
package uploads

import (
	"context"
	"sort"
	"strings"
	"time"
)

// profilePrefix is the naming convention the upload handler uses for
// profile photos. Anything else in a driver's area is not a candidate.
const profilePrefix = "profile_"

// FileInfo describes one file in a driver's storage area. Ref is the
// canonical reference stored on the driver's profile when this file is the
// current photo.
type FileInfo struct {
	Name    string
	Ref     string
	ModTime time.Time
}

// Store enumerates a driver's storage area.
type Store interface {
	// ListDriverFiles returns every file in the driver's area, with
	// modification timestamps. A driver with no area yields an empty
	// list, not an error.
	ListDriverFiles(ctx context.Context, driverID int64) ([]FileInfo, error)
}

// IsProfileCandidate reports whether the file name follows the profile
// photo naming convention.
func IsProfileCandidate(name string) bool {
	return strings.HasPrefix(name, profilePrefix)
}

// ProfileCandidates filters files down to profile photo candidates and
// orders them newest first. Equal timestamps are broken by descending
// name, so the selection is deterministic.
func ProfileCandidates(files []FileInfo) []FileInfo {
	var candidates []FileInfo
	for _, f := range files {
		if IsProfileCandidate(f.Name) {
			candidates = append(candidates, f)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].ModTime.Equal(candidates[j].ModTime) {
			return candidates[i].ModTime.After(candidates[j].ModTime)
		}

		return candidates[i].Name > candidates[j].Name
	})

	return candidates
}
