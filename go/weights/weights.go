// Package weights turns a processor template grid into weighted block
// replacement rules.
//
// A template is a row of side-by-side columns along the grid's Z axis. The
// block at the base of each column (x=0, y=0) is a placeholder naming the
// column's role; every other block painted into the column is a candidate
// replacement for that placeholder, weighted by how often it occurs.
package weights

import (
	"sort"
	"strconv"
)

// Grid is a decoded voxel grid. Voxels are addressed by a linear index that
// runs x fastest, then z, then y.
type Grid interface {
	Dims() (width, height, length int)
	BlockAt(index int) string
}

// Coord locates a voxel within a template. Depth is the grid's X axis,
// Height its Y axis and Column its Z axis.
type Coord struct {
	Depth, Height, Column int
}

// BlockSet is a set of block identifiers.
type BlockSet map[string]struct{}

func NewBlockSet(blocks ...string) BlockSet {
	s := make(BlockSet, len(blocks))
	for _, b := range blocks {
		s[b] = struct{}{}
	}
	return s
}

func (s BlockSet) Has(block string) bool {
	_, ok := s[block]
	return ok
}

// RoleSchema lists the placeholder suffix expected for each column index.
// Index 0 is the base block and has an empty suffix.
type RoleSchema []string

// Suffix returns the suffix for a column; columns past the end of the schema
// expect the base placeholder.
func (rs RoleSchema) Suffix(column int) string {
	if column >= 0 && column < len(rs) {
		return rs[column]
	}
	return ""
}

// ProcessorID builds the base placeholder identifier for a processor, e.g.
// ProcessorID("wotr:processor_block_", 3) == "wotr:processor_block_3".
func ProcessorID(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// BlockCount is one entry of an ordered frequency table.
type BlockCount struct {
	Block string
	Count int
}

// Column accumulates the blocks of one template column.
type Column struct {
	Index int
	// Role is the block seen at the column's base, valid when HasRole is set.
	Role    string
	HasRole bool

	populated bool
	counts    []BlockCount
	pos       map[string]int
}

// Populated reports whether the column holds anything besides ignored blocks.
func (c *Column) Populated() bool { return c.populated }

func newColumn(index int) *Column {
	return &Column{Index: index, pos: map[string]int{}}
}

func (c *Column) setRole(block string) {
	if c.HasRole {
		return
	}
	c.Role, c.HasRole = block, true
}

func (c *Column) add(block string) {
	if i, ok := c.pos[block]; ok {
		c.counts[i].Count++
		return
	}
	c.pos[block] = len(c.counts)
	c.counts = append(c.counts, BlockCount{Block: block, Count: 1})
}

// Counts returns a copy of the column's frequency table in first-seen order.
func (c *Column) Counts() []BlockCount {
	return append([]BlockCount(nil), c.counts...)
}

// Columns maps column index to its accumulated data.
type Columns map[int]*Column

// Indexes returns the populated column indexes in ascending order.
func (cs Columns) Indexes() []int {
	idxs := make([]int, 0, len(cs))
	for i, c := range cs {
		if c.populated {
			idxs = append(idxs, i)
		}
	}
	sort.Ints(idxs)
	return idxs
}

// MaxIndex returns the largest populated column index, or -1 if none.
func (cs Columns) MaxIndex() int {
	hi := -1
	for i, c := range cs {
		if c.populated && i > hi {
			hi = i
		}
	}
	return hi
}
