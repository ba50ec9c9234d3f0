package weights

// Mismatch describes one column whose placeholder is wrong or absent.
type Mismatch struct {
	Column   int    `json:"column"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Missing  bool   `json:"missing,omitempty"`
}

// Err returns the typed error for the mismatch.
func (m Mismatch) Err() error {
	if m.Missing {
		return &MissingRoleError{Column: m.Column, Expected: m.Expected}
	}
	return &PlaceholderMismatchError{Column: m.Column, Expected: m.Expected, Actual: m.Actual}
}

// Report is the result of validating a template's placeholders.
type Report struct {
	Valid      bool       `json:"valid"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Errs returns one error per mismatching column.
func (r Report) Errs() []error {
	errs := make([]error, len(r.Mismatches))
	for i, m := range r.Mismatches {
		errs[i] = m.Err()
	}
	return errs
}

// Validate checks every column's role against processorID plus the schema
// suffix for its index. All columns covered by the schema are checked, as is
// every populated column past its end. Every mismatch is reported.
func Validate(cols Columns, processorID string, schema RoleSchema) Report {
	n := len(schema)
	if hi := cols.MaxIndex() + 1; hi > n {
		n = hi
	}

	r := Report{Valid: true}
	for i := 0; i < n; i++ {
		expected := processorID + schema.Suffix(i)
		c, ok := cols[i]
		switch {
		case !ok || !c.HasRole:
			r.Mismatches = append(r.Mismatches, Mismatch{Column: i, Expected: expected, Missing: true})
		case c.Role != expected:
			r.Mismatches = append(r.Mismatches, Mismatch{Column: i, Expected: expected, Actual: c.Role})
		}
	}
	r.Valid = len(r.Mismatches) == 0
	return r
}
