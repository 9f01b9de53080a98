// Package ids provides collision-free name suffixes backed by random UUIDs.
package ids

import "github.com/google/uuid"

type UUID struct{}

func (UUID) UniqueSuffix() string {
	return uuid.NewString()[:8]
}
