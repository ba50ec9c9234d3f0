package weights

// Classify walks every voxel of g once, in storage order (y, then z, then
// x), grouping blocks by column. The first block seen at depth 0, height 0
// becomes the column's role whether or not it is ignored; only blocks outside
// ignored are counted.
//
// Columns holding nothing but ignored blocks are kept for diagnostics but are
// not populated, so they produce no rules.
func Classify(g Grid, ignored BlockSet) Columns {
	width, height, length := g.Dims()
	cols := Columns{}
	column := func(z int) *Column {
		c, ok := cols[z]
		if !ok {
			c = newColumn(z)
			cols[z] = c
		}
		return c
	}

	index := 0
	for y := 0; y < height; y++ {
		for z := 0; z < length; z++ {
			for x := 0; x < width; x++ {
				block := g.BlockAt(index)
				index++
				at := Coord{Depth: x, Height: y, Column: z}

				if at.Depth == 0 && at.Height == 0 {
					column(at.Column).setRole(block)
				}
				if ignored.Has(block) {
					continue
				}
				column(at.Column).add(block)
			}
		}
	}

	for _, c := range cols {
		c.populated = len(c.counts) > 0 || (c.HasRole && !ignored.Has(c.Role))
	}
	return cols
}
