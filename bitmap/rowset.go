package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// RowSet is a set of row identifiers backed by a 32-bit Roaring Bitmap.
// It wraps the official roaring implementation.
// Row sets are the currency flowing from index scans through the
// AND/OR combinators into the bitmap cursor.
type RowSet struct {
	rb *roaring.Bitmap
}

// NewRowSet creates a new empty row set.
func NewRowSet() *RowSet {
	return &RowSet{
		rb: roaring.New(),
	}
}

// FromSorted creates a row set from a sorted slice of row identifiers.
func FromSorted(rows []uint32) *RowSet {
	rs := NewRowSet()
	rs.rb.AddMany(rows)
	return rs
}

// Add adds a row identifier to the set.
func (s *RowSet) Add(row uint32) {
	s.rb.Add(row)
}

// AddMany adds multiple row identifiers to the set.
func (s *RowSet) AddMany(rows []uint32) {
	s.rb.AddMany(rows)
}

// Remove removes a row identifier from the set.
func (s *RowSet) Remove(row uint32) {
	s.rb.Remove(row)
}

// Contains checks if a row identifier is in the set.
func (s *RowSet) Contains(row uint32) bool {
	return s.rb.Contains(row)
}

// IsEmpty returns true if the set is empty.
func (s *RowSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of rows in the set.
func (s *RowSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (s *RowSet) Clone() *RowSet {
	return &RowSet{
		rb: s.rb.Clone(),
	}
}

// And computes the intersection with another set in place.
func (s *RowSet) And(other *RowSet) {
	s.rb.And(other.rb)
}

// Or computes the union with another set in place.
func (s *RowSet) Or(other *RowSet) {
	s.rb.Or(other.rb)
}

// Clear removes all rows from the set.
func (s *RowSet) Clear() {
	s.rb.Clear()
}

// ToArray returns all row identifiers in ascending order.
func (s *RowSet) ToArray() []uint32 {
	return s.rb.ToArray()
}

// Iterator returns an iterator over the set in ascending row order.
func (s *RowSet) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// GetSizeInBytes returns the size of the underlying bitmap in bytes.
func (s *RowSet) GetSizeInBytes() uint64 {
	return s.rb.GetSizeInBytes()
}
