package weights

import "github.com/samber/lo"

// Step is one weighted outcome of a replacement.
type Step struct {
	OutputState string  `json:"output_state"`
	StepSize    float64 `json:"step_size"`
}

// Replacement swaps InputState for one of OutputSteps, chosen by weight.
type Replacement struct {
	InputState  string `json:"input_state"`
	OutputSteps []Step `json:"output_steps"`
}

// BuildRule makes the replacement for one column. Steps keep the order of w;
// an empty w gives a rule with no steps rather than no rule.
func BuildRule(inputState string, w []Weight) Replacement {
	steps := make([]Step, len(w))
	for i, e := range w {
		steps[i] = Step{OutputState: e.Block, StepSize: e.Weight}
	}
	return Replacement{InputState: inputState, OutputSteps: steps}
}

// Options configures extraction for one template.
type Options struct {
	ProcessorID string
	Schema      RoleSchema
	Ignored     BlockSet
	Precision   int
}

// ColumnResult is the extraction output for one column.
type ColumnResult struct {
	Index   int
	Role    string
	Counts  []BlockCount
	Weights []Weight
	Rule    Replacement
	// Err is set when the column's weights could not be published; its rule
	// then has no steps.
	Err error
}

// GridResult is the extraction output for one template. Columns is empty
// when the template failed validation.
type GridResult struct {
	ProcessorID string
	Report      Report
	Columns     []ColumnResult
}

func (r GridResult) Rules() []Replacement {
	ret := make([]Replacement, len(r.Columns))
	for i, c := range r.Columns {
		ret[i] = c.Rule
	}
	return ret
}

// ColumnErrs returns the errors of columns whose weights were dropped.
func (r GridResult) ColumnErrs() []error {
	var errs []error
	for _, c := range r.Columns {
		if c.Err != nil {
			errs = append(errs, c.Err)
		}
	}
	return errs
}

// Extract classifies, validates, counts and normalizes one template. A
// template that fails validation yields its report and no columns. A column
// whose weights fall outside [0, 1] keeps an empty rule and reports a
// WeightRangeError; the rest of the template is unaffected.
func Extract(g Grid, opts Options) GridResult {
	cols := Classify(g, opts.Ignored)
	res := GridResult{
		ProcessorID: opts.ProcessorID,
		Report:      Validate(cols, opts.ProcessorID, opts.Schema),
	}
	if !res.Report.Valid {
		return res
	}
	for _, idx := range cols.Indexes() {
		c := cols[idx]
		counts := Eligible(c)
		w := Normalize(counts, opts.Precision)
		var err error
		if bad, ok := lo.Find(w, func(e Weight) bool { return e.Weight < 0 }); ok {
			err = &WeightRangeError{Column: idx, Block: bad.Block, Weight: bad.Weight}
			w = []Weight{}
		}
		res.Columns = append(res.Columns, ColumnResult{
			Index:   idx,
			Role:    c.Role,
			Counts:  counts,
			Weights: w,
			Rule:    BuildRule(c.Role, w),
			Err:     err,
		})
	}
	return res
}

// RuleSet collects replacements across templates in the order they are added.
type RuleSet struct {
	rules []Replacement
}

// Add appends the rules of a valid template and reports whether it did.
func (rs *RuleSet) Add(r GridResult) bool {
	if !r.Report.Valid {
		return false
	}
	rs.rules = append(rs.rules, r.Rules()...)
	return true
}

func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns a copy of the collected replacements.
func (rs *RuleSet) Rules() []Replacement {
	return append([]Replacement{}, rs.rules...)
}
