package naming

import (
	"sync"
)

// CollisionResolver tracks output paths claimed by input files. The first
// input to claim a path owns it for the rest of the run; later inputs are
// told who the owner is so the caller can skip them. All methods are
// goroutine-safe.
type CollisionResolver struct {
	mu     sync.Mutex
	owners map[string]string // output path → input path that owns it
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{owners: make(map[string]string)}
}

// Claim registers input as the owner of output. It returns ok=true when
// output was unclaimed or already owned by input, otherwise ok=false and the
// input that owns it.
func (cr *CollisionResolver) Claim(input, output string) (owner string, ok bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[output]
	if !exists || owner == input {
		cr.owners[output] = input
		return input, true
	}
	return owner, false
}
