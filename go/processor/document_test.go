package processor

import (
	"encoding/json"
	"testing"

	"github.com/nsf/jsondiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wotr-tools/blockweights/go/config"
	"github.com/wotr-tools/blockweights/go/weights"
)

func assertJSON(t *testing.T, want string, got []byte) {
	t.Helper()
	opts := jsondiff.DefaultConsoleOptions()
	opts.CompareNumbers = func(a, b json.Number) bool {
		av, _ := a.Float64()
		bv, _ := b.Float64()
		return av == bv
	}
	diff, str := jsondiff.Compare([]byte(want), got, &opts)
	if diff != jsondiff.FullMatch {
		t.Errorf("document mismatch (%s):\n%s", diff, str)
	}
}

var rules = []weights.Replacement{
	{InputState: "wotr:processor_block_1", OutputSteps: []weights.Step{
		{OutputState: "minecraft:stone", StepSize: 0.667},
		{OutputState: "minecraft:andesite", StepSize: 0.333},
	}},
	{InputState: "wotr:processor_block_1_slab", OutputSteps: []weights.Step{}},
}

func TestAssembleBare(t *testing.T) {
	doc, errs := Assemble(rules, "wotr:spot_gradient", nil)
	require.Empty(t, errs)
	raw, err := Encode(doc)
	require.NoError(t, err)
	assertJSON(t, `{"processors": [{
		"processor_type": "wotr:spot_gradient",
		"replacements": [
			{"input_state": "wotr:processor_block_1", "output_steps": [
				{"output_state": "minecraft:stone", "step_size": 0.667},
				{"output_state": "minecraft:andesite", "step_size": 0.333}]},
			{"input_state": "wotr:processor_block_1_slab", "output_steps": []}]
	}]}`, raw)
}

func TestAssembleNoRules(t *testing.T) {
	doc, _ := Assemble(nil, "wotr:spot_gradient", nil)
	raw, err := Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"replacements": []`)
}

func TestAssembleFeatures(t *testing.T) {
	f := config.DefaultFeatures(config.TargetPOI)
	f.Mushrooms = &config.Rarity{Rarity: 0.05}
	f.Vines = &config.Rarity{Rarity: 0.2}
	f.Attachments = []config.Attachment{
		{Name: "minecraft:lantern", Rarity: "0.1", RequiresDown: true, Properties: map[string]string{"hanging": "true", "": "x", "waterlogged": ""}},
		{Name: ""},
		{Name: "minecraft:vine", Sides: "two"},
		{Name: "minecraft:glow_lichen", Sides: " 2 "},
	}

	doc, errs := Assemble(rules[:1], "wotr:spot_gradient", f)
	require.Len(t, errs, 1)
	var malformed *weights.MalformedInputError
	require.ErrorAs(t, errs[0], &malformed)
	assert.Equal(t, "minecraft:vine", malformed.Record)

	types := make([]string, len(doc.Processors))
	for i, p := range doc.Processors {
		types[i] = p.Type()
	}
	assert.Equal(t, []string{
		"wotr:spot_gradient", TypeMushrooms, TypeVines, TypeRiftChests, TypeAttachment, TypeAttachment,
	}, types)

	raw, err := Encode(doc)
	require.NoError(t, err)
	assertJSON(t, `{"processors": [
		{
			"processor_type": "wotr:spot_gradient",
			"noise_scale_x": 0.075, "noise_scale_y": 0.075, "noise_scale_z": 0.075,
			"replacements": [{"input_state": "wotr:processor_block_1", "output_steps": [
				{"output_state": "minecraft:stone", "step_size": 0.667},
				{"output_state": "minecraft:andesite", "step_size": 0.333}]}]
		},
		{"processor_type": "wotr:mushrooms", "rarity": 0.05},
		{"processor_type": "wotr:vines", "rarity": 0.2},
		{"processor_type": "wotr:rift_chests", "base_loot_table": "wotr:chests/", "rarity": 0.6,
			"chest_types": [{"chest_type": "wooden", "weight": 1}]},
		{"processor_type": "wotr:attachment", "requires_sides": 0, "requires_up": false, "requires_down": true,
			"rarity": 0.1, "blockstate": {"Name": "minecraft:lantern", "Properties": {"hanging": "true"}}},
		{"processor_type": "wotr:attachment", "requires_sides": 2, "requires_up": false, "requires_down": false,
			"rarity": 0, "blockstate": {"Name": "minecraft:glow_lichen", "Properties": {}}}
	]}`, raw)
}

func TestAttachmentRarityRange(t *testing.T) {
	_, errs := Assemble(nil, "wotr:spot_gradient", &config.Features{
		Attachments: []config.Attachment{{Name: "minecraft:torch", Rarity: "1.5"}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "outside")
}

func TestEncodeIsDeterministic(t *testing.T) {
	f := &config.Features{Attachments: []config.Attachment{
		{Name: "minecraft:lantern", Properties: map[string]string{"b": "1", "a": "2", "c": "3"}},
	}}
	doc, _ := Assemble(rules, "wotr:spot_gradient", f)
	first, err := Encode(doc)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		doc, _ := Assemble(rules, "wotr:spot_gradient", f)
		again, err := Encode(doc)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestValidateRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"no processors", `{"processors": []}`},
		{"primary without replacements", `{"processors": [{"processor_type": "wotr:spot_gradient"}]}`},
		{"step above one", `{"processors": [{"processor_type": "t", "replacements": [
			{"input_state": "a", "output_steps": [{"output_state": "b", "step_size": 1.5}]}]}]}`},
		{"null steps", `{"processors": [{"processor_type": "t", "replacements": [
			{"input_state": "a", "output_steps": null}]}]}`},
		{"chests without types", `{"processors": [{"processor_type": "t", "replacements": []},
			{"processor_type": "wotr:rift_chests", "base_loot_table": "x", "rarity": 0.5, "chest_types": []}]}`},
		{"not json", `{"processors": [`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, Validate([]byte(tc.doc)))
		})
	}
	assert.NoError(t, Validate([]byte(`{"processors": [{"processor_type": "t", "replacements": []},
		{"processor_type": "example:custom", "anything": 1}]}`)))
}
