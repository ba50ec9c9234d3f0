package weights

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceGrid is a Grid backed by block names in (y, z, x) order.
type sliceGrid struct {
	width, height, length int
	blocks                []string
}

func (g *sliceGrid) Dims() (int, int, int) {
	return g.width, g.height, g.length
}

func (g *sliceGrid) BlockAt(i int) string {
	return g.blocks[i]
}

func (g *sliceGrid) set(x, y, z int, b string) {
	g.blocks[x+z*g.width+y*g.width*g.length] = b
}

func newGrid(width, height, length int, fill string) *sliceGrid {
	blocks := make([]string, width*height*length)
	for i := range blocks {
		blocks[i] = fill
	}
	return &sliceGrid{width, height, length, blocks}
}

var ignored = NewBlockSet("minecraft:air", "minecraft:bedrock")

func weightMap(ws []Weight) map[string]float64 {
	return lo.SliceToMap(ws, func(w Weight) (string, float64) { return w.Block, w.Weight })
}

func counts(pairs ...any) []BlockCount {
	ret := []BlockCount{}
	for i := 0; i < len(pairs); i += 2 {
		ret = append(ret, BlockCount{Block: pairs[i].(string), Count: pairs[i+1].(int)})
	}
	return ret
}

func TestRound(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{1.0 / 3, 0.333},
		{2.0 / 3, 0.667},
		{1.0, 1.0},
		{0.0004, 0},
		{0.1234, 0.123},
	} {
		assert.Equal(t, tc.want, Round(tc.in, 3), "Round(%v, 3)", tc.in)
	}
}

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []BlockCount
		want []Weight
	}{
		{"empty", nil, []Weight{}},
		{"single", counts("a", 7), []Weight{{"a", 1.0}}},
		{"two to one", counts("a", 2, "b", 1), []Weight{{"a", 0.667}, {"b", 0.333}}},
		{"three way tie", counts("X", 1, "Y", 1, "Z", 1), []Weight{{"X", 0.334}, {"Y", 0.333}, {"Z", 0.333}}},
		{"tie goes to smallest name", counts("Z", 1, "Y", 1, "X", 1), []Weight{{"Z", 0.333}, {"Y", 0.333}, {"X", 0.334}}},
		{"negative residual", counts("f", 1, "e", 1, "d", 1, "c", 1, "b", 1, "a", 1),
			[]Weight{{"f", 0.167}, {"e", 0.167}, {"d", 0.167}, {"c", 0.167}, {"b", 0.167}, {"a", 0.165}}},
		{"residual goes to max count", counts("a", 1, "b", 1, "c", 4),
			[]Weight{{"a", 0.167}, {"b", 0.167}, {"c", 0.666}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in, DefaultPrecision)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 2000; iter++ {
		n := 1 + rng.Intn(20)
		in := make([]BlockCount, n)
		for i := range in {
			in[i] = BlockCount{Block: string(rune('a' + i)), Count: 1 + rng.Intn(50)}
		}
		got := Normalize(in, DefaultPrecision)
		require.Len(t, got, n)
		sum := lo.SumBy(got, func(w Weight) float64 { return w.Weight })
		require.Equal(t, 1.0, Round(sum, DefaultPrecision), "weights %v", got)
		for _, w := range got {
			require.GreaterOrEqual(t, w.Weight, 0.0)
			require.Equal(t, w.Weight, Round(w.Weight, DefaultPrecision))
		}

		shuffled := append([]BlockCount(nil), in...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, weightMap(got), weightMap(Normalize(shuffled, DefaultPrecision)))
	}
}

func TestClassify(t *testing.T) {
	// two columns, each 2 deep and 2 high
	g := newGrid(2, 2, 2, "minecraft:air")
	g.set(0, 0, 0, "ns:p_1")
	g.set(1, 0, 0, "minecraft:stone")
	g.set(0, 1, 0, "minecraft:dirt")
	g.set(1, 1, 0, "minecraft:stone")
	g.set(0, 0, 1, "minecraft:bedrock")
	g.set(1, 1, 1, "minecraft:andesite")

	cols := Classify(g, ignored)
	require.Equal(t, []int{0, 1}, cols.Indexes())

	c0 := cols[0]
	assert.True(t, c0.HasRole)
	assert.Equal(t, "ns:p_1", c0.Role)
	assert.Equal(t, counts("ns:p_1", 1, "minecraft:stone", 2, "minecraft:dirt", 1), c0.Counts())

	// ignored blocks still count as the role, but are never counted
	c1 := cols[1]
	assert.Equal(t, "minecraft:bedrock", c1.Role)
	assert.Equal(t, counts("minecraft:andesite", 1), c1.Counts())
}

func TestClassifyAllIgnoredColumn(t *testing.T) {
	g := newGrid(1, 1, 3, "minecraft:air")
	g.set(0, 0, 0, "ns:p_1")

	cols := Classify(g, ignored)
	assert.Equal(t, []int{0}, cols.Indexes())
	assert.Equal(t, 0, cols.MaxIndex())
	require.Contains(t, cols, 2)
	assert.False(t, cols[2].Populated())
	assert.Equal(t, "minecraft:air", cols[2].Role)
}

func TestValidate(t *testing.T) {
	pid := ProcessorID("ns:processor_block_", 3)
	require.Equal(t, "ns:processor_block_3", pid)
	schema := RoleSchema{"", "_slab"}

	g := newGrid(1, 1, 2, "minecraft:air")
	g.set(0, 0, 0, "ns:processor_block_3")
	g.set(0, 0, 1, "ns:processor_block_3_slab")
	r := Validate(Classify(g, ignored), pid, schema)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Mismatches)

	g.set(0, 0, 1, "ns:processor_block_3_stairs")
	r = Validate(Classify(g, ignored), pid, schema)
	assert.False(t, r.Valid)
	require.Equal(t, []Mismatch{{Column: 1, Expected: "ns:processor_block_3_slab", Actual: "ns:processor_block_3_stairs"}}, r.Mismatches)

	var mm *PlaceholderMismatchError
	require.ErrorAs(t, r.Errs()[0], &mm)
	assert.Equal(t, "ns:processor_block_3_stairs", mm.Actual)
}

func TestValidateMissingAndBeyondSchema(t *testing.T) {
	pid := "ns:processor_block_2"
	schema := RoleSchema{"", "_slab", "_wall"}

	// column 1 has air at its base; column 3 lies past the schema
	g := newGrid(2, 1, 4, "minecraft:air")
	g.set(0, 0, 0, pid)
	g.set(1, 0, 1, "minecraft:stone")
	g.set(0, 0, 2, pid+"_wall")
	g.set(0, 0, 3, pid)
	cols := Classify(g, ignored)
	r := Validate(cols, pid, schema)
	require.False(t, r.Valid)
	require.Len(t, r.Mismatches, 1)
	assert.Equal(t, Mismatch{Column: 1, Expected: pid + "_slab", Actual: "minecraft:air"}, r.Mismatches[0])

	delete(cols, 1)
	r = Validate(cols, pid, schema)
	require.Len(t, r.Mismatches, 1)
	assert.True(t, r.Mismatches[0].Missing)
	var missing *MissingRoleError
	require.ErrorAs(t, r.Errs()[0], &missing)
	assert.Equal(t, 1, missing.Column)

	// a populated column past the schema must carry the base placeholder
	g.set(0, 0, 1, pid+"_slab")
	g.set(0, 0, 3, pid+"_fence")
	r = Validate(Classify(g, ignored), pid, schema)
	require.Equal(t, []Mismatch{{Column: 3, Expected: pid, Actual: pid + "_fence"}}, r.Mismatches)
}

func TestEligibleDropsPlaceholder(t *testing.T) {
	g := newGrid(4, 1, 1, "minecraft:air")
	g.set(0, 0, 0, "ns:p_1")
	g.set(1, 0, 0, "ns:p_1")
	g.set(2, 0, 0, "minecraft:cobblestone")
	cols := Classify(g, ignored)
	assert.Equal(t, counts("minecraft:cobblestone", 1), Eligible(cols[0]))
}

func TestExtract(t *testing.T) {
	pid := "ns:processor_block_1"
	opts := Options{ProcessorID: pid, Schema: RoleSchema{"", "_slab"}, Ignored: ignored, Precision: DefaultPrecision}

	// column 0 holds A A B with A the placeholder; column 1 holds only its placeholder
	g := newGrid(3, 1, 2, "minecraft:air")
	g.set(0, 0, 0, pid)
	g.set(1, 0, 0, pid)
	g.set(2, 0, 0, "B")
	g.set(0, 0, 1, pid+"_slab")

	res := Extract(g, opts)
	require.True(t, res.Report.Valid)
	require.Len(t, res.Columns, 2)
	assert.Equal(t, []Replacement{
		{InputState: pid, OutputSteps: []Step{{OutputState: "B", StepSize: 1.0}}},
		{InputState: pid + "_slab", OutputSteps: []Step{}},
	}, res.Rules())
	assert.NotNil(t, res.Rules()[1].OutputSteps)
}

func TestExtractThirds(t *testing.T) {
	pid := "ns:processor_block_4"
	g := newGrid(4, 1, 1, "minecraft:air")
	g.set(0, 0, 0, pid)
	g.set(1, 0, 0, "Z")
	g.set(2, 0, 0, "Y")
	g.set(3, 0, 0, "X")

	res := Extract(g, Options{ProcessorID: pid, Ignored: ignored, Precision: 3})
	require.True(t, res.Report.Valid)
	assert.Equal(t, []Step{{"Z", 0.333}, {"Y", 0.333}, {"X", 0.334}}, res.Columns[0].Rule.OutputSteps)
}

func TestRuleSetSkipsInvalidGrids(t *testing.T) {
	opts := func(n int) Options {
		return Options{ProcessorID: ProcessorID("ns:processor_block_", n), Schema: RoleSchema{""}, Ignored: ignored, Precision: 3}
	}
	good := newGrid(2, 1, 1, "minecraft:stone")
	good.set(0, 0, 0, "ns:processor_block_1")
	bad := newGrid(2, 1, 1, "minecraft:stone")
	bad.set(0, 0, 0, "ns:processor_block_9")
	good2 := newGrid(2, 1, 1, "minecraft:dirt")
	good2.set(0, 0, 0, "ns:processor_block_3")

	var rs RuleSet
	assert.True(t, rs.Add(Extract(good, opts(1))))
	assert.False(t, rs.Add(Extract(bad, opts(2))))
	assert.True(t, rs.Add(Extract(good2, opts(3))))

	rules := rs.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "ns:processor_block_1", rules[0].InputState)
	assert.Equal(t, "ns:processor_block_3", rules[1].InputState)
	assert.Equal(t, []Step{{"minecraft:dirt", 1.0}}, rules[1].OutputSteps)
}

func TestExtractWeightOutOfRange(t *testing.T) {
	// 1500 singletons each round up to 0.001, overshooting by 0.5
	const n = 1500
	in := make([]BlockCount, n)
	for i := range in {
		in[i] = BlockCount{Block: fmt.Sprintf("b%04d", i), Count: 1}
	}
	w := Normalize(in, DefaultPrecision)
	assert.Equal(t, Weight{"b0000", -0.499}, w[0])

	pid := "ns:processor_block_1"
	g := newGrid(n+1, 1, 2, "minecraft:air")
	g.set(0, 0, 0, pid)
	for i := 0; i < n; i++ {
		g.set(i+1, 0, 0, in[i].Block)
	}
	g.set(0, 0, 1, pid+"_slab")
	g.set(1, 0, 1, "minecraft:stone_slab")

	res := Extract(g, Options{ProcessorID: pid, Schema: RoleSchema{"", "_slab"}, Ignored: ignored, Precision: DefaultPrecision})
	require.True(t, res.Report.Valid)
	require.Len(t, res.Columns, 2)
	assert.Equal(t, []Step{}, res.Columns[0].Rule.OutputSteps)
	assert.Len(t, res.Columns[0].Counts, n)

	errs := res.ColumnErrs()
	require.Len(t, errs, 1)
	var wr *WeightRangeError
	require.ErrorAs(t, errs[0], &wr)
	assert.Equal(t, 0, wr.Column)
	assert.Equal(t, "b0000", wr.Block)

	assert.NoError(t, res.Columns[1].Err)
	assert.Equal(t, []Step{{"minecraft:stone_slab", 1}}, res.Columns[1].Rule.OutputSteps)
}
