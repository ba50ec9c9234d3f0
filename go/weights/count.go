package weights

// Eligible returns the column's counts with its own placeholder removed, so a
// placeholder never appears as a replacement for itself. Ignored blocks were
// already dropped by Classify. Order is preserved.
func Eligible(c *Column) []BlockCount {
	ret := make([]BlockCount, 0, len(c.counts))
	for _, bc := range c.counts {
		if c.HasRole && bc.Block == c.Role {
			continue
		}
		if bc.Count > 0 {
			ret = append(ret, bc)
		}
	}
	return ret
}
