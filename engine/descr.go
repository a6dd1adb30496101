package engine

import "fmt"

// IndexID identifies an index within its owning table.
type IndexID uint32

// IndexDescr describes one index of a table. Columns lists the key
// columns in index order.
type IndexDescr struct {
	ID      IndexID
	Name    string
	Columns []string
	Unique  bool
}

// TableDescr is the storage-engine descriptor for a table: its columns
// and the ordered index list. When HasPrimary is set, PrimaryIndex is
// the position of the primary index in Indexes.
type TableDescr struct {
	Name         string
	Columns      []Column
	Indexes      []IndexDescr
	PrimaryIndex int
	HasPrimary   bool
}

// ColumnIndex returns the position of a column by name.
func (d *TableDescr) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ColumnType returns the type of a column by name.
func (d *TableDescr) ColumnType(name string) (ValueType, bool) {
	pos, ok := d.ColumnIndex(name)
	if !ok {
		return TypeInvalid, false
	}
	return d.Columns[pos].Type, true
}

// Primary returns the primary index descriptor, or nil if the table has
// no declared primary key.
func (d *TableDescr) Primary() *IndexDescr {
	if !d.HasPrimary {
		return nil
	}
	return &d.Indexes[d.PrimaryIndex]
}

// IndexPosition returns the position of the index with the given ID in
// the ordered index list.
func (d *TableDescr) IndexPosition(id IndexID) (int, bool) {
	for i := range d.Indexes {
		if d.Indexes[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// validate checks descriptor invariants at table creation time.
func (d *TableDescr) validate() error {
	if d.Name == "" {
		return fmt.Errorf("engine: table descriptor has no name")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("engine: table %q has no columns", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("engine: table %q has duplicate column %q", d.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	if d.HasPrimary && (d.PrimaryIndex < 0 || d.PrimaryIndex >= len(d.Indexes)) {
		return fmt.Errorf("engine: table %q primary index position %d out of range", d.Name, d.PrimaryIndex)
	}
	ids := make(map[IndexID]struct{}, len(d.Indexes))
	for _, ix := range d.Indexes {
		if _, dup := ids[ix.ID]; dup {
			return fmt.Errorf("engine: table %q has duplicate index id %d", d.Name, ix.ID)
		}
		ids[ix.ID] = struct{}{}
		for _, col := range ix.Columns {
			if _, ok := seen[col]; !ok {
				return fmt.Errorf("engine: index %q references unknown column %q", ix.Name, col)
			}
		}
	}
	return nil
}
