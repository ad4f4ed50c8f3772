// Package queue owns the ordered list of track ids being traversed and
// computes next/previous ids under sequential or shuffled policy.
//
// Shuffle is memoryless: Previous under shuffle draws a fresh random pick
// rather than retracing the actual history, so it is not an inverse of Next.
package queue

import "math/rand/v2"

// Queue is the traversal order. Duplicate ids are allowed if the caller
// supplies them. The current position is derived from the current track id
// on every navigation call rather than stored, so replacing the order keeps
// the cursor consistent with whatever track is loaded.
type Queue struct {
	ids []string
	rng *rand.Rand
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Set replaces the traversal order.
func (q *Queue) Set(ids []string) {
	q.ids = make([]string, len(ids))
	copy(q.ids, ids)
}

// IDs returns a copy of the traversal order.
func (q *Queue) IDs() []string {
	out := make([]string, len(q.ids))
	copy(out, q.ids)
	return out
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return len(q.ids)
}

// IsEmpty returns true if the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return len(q.ids) == 0
}

// Contains reports whether id appears in the queue.
func (q *Queue) Contains(id string) bool {
	return q.indexOf(id) >= 0
}

// IndexOf returns the first index of id, or -1.
func (q *Queue) IndexOf(id string) int {
	return q.indexOf(id)
}

func (q *Queue) indexOf(id string) int {
	for i, v := range q.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Next returns the id after currentID. Sequential mode wraps to the start;
// an unknown currentID defaults to index 0. Shuffle mode draws uniformly
// from the queue excluding currentID (a single-entry queue returns that
// entry). ok is false only when the queue is empty.
func (q *Queue) Next(currentID string, shuffle bool) (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	if shuffle {
		return q.randomExcluding(currentID), true
	}
	idx := q.indexOf(currentID)
	if idx < 0 {
		return q.ids[0], true
	}
	return q.ids[(idx+1)%len(q.ids)], true
}

// Previous is symmetric to Next: sequential mode wraps backward, with an
// unknown currentID defaulting to the last entry; shuffle mode draws a new
// exclusion-based pick each call.
func (q *Queue) Previous(currentID string, shuffle bool) (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	if shuffle {
		return q.randomExcluding(currentID), true
	}
	idx := q.indexOf(currentID)
	if idx <= 0 {
		return q.ids[len(q.ids)-1], true
	}
	return q.ids[idx-1], true
}

func (q *Queue) randomExcluding(currentID string) string {
	candidates := make([]string, 0, len(q.ids))
	for _, id := range q.ids {
		if id != currentID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		// Queue holds only the current id; the exclusion set is empty.
		return q.ids[0]
	}
	return candidates[q.rng.IntN(len(candidates))]
}
