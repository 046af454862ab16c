package domain

import "math/rand"

// Queue holds tracks awaiting playback in insertion order. Dequeuing always
// takes from the front; RemoveAt and Shuffle are the only operations that
// break insertion order.
type Queue struct {
	tracks []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]*Track, 0),
	}
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Append adds a track to the end of the queue.
func (q *Queue) Append(t *Track) {
	q.tracks = append(q.tracks, t)
}

// AppendAll adds tracks to the end of the queue, preserving their order.
func (q *Queue) AppendAll(ts []*Track) {
	q.tracks = append(q.tracks, ts...)
}

// Next removes and returns the first track, or nil when the queue is empty.
func (q *Queue) Next() *Track {
	if q.IsEmpty() {
		return nil
	}

	t := q.tracks[0]
	q.tracks = q.tracks[1:]
	return t
}

// Peek returns the first track without removing it, or nil when empty.
func (q *Queue) Peek() *Track {
	if q.IsEmpty() {
		return nil
	}
	return q.tracks[0]
}

// RemoveAt removes and returns the track at the given index.
// Returns nil if the index is out of bounds.
func (q *Queue) RemoveAt(index int) *Track {
	if index < 0 || index >= q.Len() {
		return nil
	}

	t := q.tracks[index]
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return t
}

// Shuffle randomly permutes the queued tracks.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})
}

// List returns a copy of all tracks in the queue.
func (q *Queue) List() []*Track {
	result := make([]*Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks from the queue.
func (q *Queue) Clear() {
	q.tracks = make([]*Track, 0)
}
