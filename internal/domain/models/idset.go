// internal/domain/models/idset.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// IDSet is a set of document IDs stored as a plain array. Membership is by
// ObjectID identity only; order carries no meaning.
type IDSet []primitive.ObjectID

// Has reports whether id is in the set.
func (s IDSet) Has(id primitive.ObjectID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Add inserts id and reports whether the set changed.
// Adding an id that is already present is a no-op.
func (s *IDSet) Add(id primitive.ObjectID) bool {
	if s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id and reports whether the set changed.
// Removing an absent id is a no-op.
func (s *IDSet) Remove(id primitive.ObjectID) bool {
	if !s.Has(id) {
		return false
	}
	// Build a fresh slice so copies of the old header are left untouched.
	out := make(IDSet, 0, len(*s)-1)
	for _, x := range *s {
		if x != id {
			out = append(out, x)
		}
	}
	*s = out
	return true
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int { return len(s) }

// Clone returns a copy that shares no backing array with s.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}
