// Package config loads the settings shared by every stage of a build.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wotr-tools/blockweights/go/weights"
)

const (
	TargetRoom = "room"
	TargetPOI  = "poi"
)

// Config is constructed once per run and passed to each stage.
type Config struct {
	// PlaceholderPrefix plus the processor number names a template's base
	// placeholder block.
	PlaceholderPrefix string `yaml:"placeholder_prefix" validate:"required"`

	// RoleSchema is the placeholder suffix for each column, in column order.
	RoleSchema    []string `yaml:"role_schema" validate:"min=1"`
	IgnoredBlocks []string `yaml:"ignored_blocks"`

	// RoundingPrecision is the number of decimal places in step sizes.
	RoundingPrecision int    `yaml:"rounding_precision" validate:"gte=1,lte=9"`
	ProcessorType     string `yaml:"processor_type" validate:"required"`

	// RequiredProcessors is how many processorN.schem files a theme must
	// have; files up to MaxProcessors are used when present.
	RequiredProcessors int `yaml:"required_processors" validate:"gte=0"`
	MaxProcessors      int `yaml:"max_processors" validate:"gtefield=RequiredProcessors,gte=1"`

	// DataVersion, when set, migrates legacy block names in older
	// schematics up to this game data version.
	DataVersion int `yaml:"data_version" validate:"gte=0"`

	Target   string    `yaml:"target" validate:"omitempty,oneof=room poi"`
	Features *Features `yaml:"features"`

	// targetFeatures is set while Features holds the target's defaults
	// rather than an explicit selection.
	targetFeatures bool
}

// Features describes the decoration processors emitted after the
// replacement processor. Nil fields are left out of the document.
type Features struct {
	NoiseScale  *NoiseScale  `yaml:"noise_scale"`
	Mushrooms   *Rarity      `yaml:"mushrooms"`
	Vines       *Rarity      `yaml:"vines"`
	RiftChests  *RiftChests  `yaml:"rift_chests"`
	Attachments []Attachment `yaml:"attachments" validate:"dive"`
}

type NoiseScale struct {
	X float64 `yaml:"x" validate:"gt=0"`
	Y float64 `yaml:"y" validate:"gt=0"`
	Z float64 `yaml:"z" validate:"gt=0"`
}

type Rarity struct {
	Rarity float64 `yaml:"rarity" validate:"gte=0,lte=1"`
}

type ChestType struct {
	ChestType string `yaml:"chest_type" validate:"required"`
	Weight    int    `yaml:"weight" validate:"gte=1"`
}

type RiftChests struct {
	Rarity        float64     `yaml:"rarity" validate:"gte=0,lte=1"`
	BaseLootTable string      `yaml:"base_loot_table" validate:"required"`
	ChestTypes    []ChestType `yaml:"chest_types" validate:"min=1,dive"`
}

// Attachment places a block next to a solid face. Rarity and Sides are kept
// as text so a bad value skips one attachment rather than the whole config.
type Attachment struct {
	Name         string            `yaml:"name"`
	Rarity       string            `yaml:"rarity"`
	RequiresUp   bool              `yaml:"requires_up"`
	RequiresDown bool              `yaml:"requires_down"`
	Sides        string            `yaml:"sides"`
	Properties   map[string]string `yaml:"properties"`
}

// DefaultRoleSchema is the column layout of the processor template.
var DefaultRoleSchema = []string{
	"", // base block
	"_directional_pillar",
	"_slab",
	"_stairs",
	"_wall",
	"_button",
	"_pressure_plate",
	"_fence",
	"_fence_gate",
	"_glass",
	"_glass_pane",
	"_trapdoor",
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		PlaceholderPrefix: "wotr:processor_block_",
		RoleSchema:        append([]string(nil), DefaultRoleSchema...),
		IgnoredBlocks: []string{
			"minecraft:air",
			"minecraft:void_air",
			"minecraft:cave_air",
			"minecraft:bedrock",
		},
		RoundingPrecision:  weights.DefaultPrecision,
		ProcessorType:      "wotr:spot_gradient",
		RequiredProcessors: 8,
		MaxProcessors:      15,
	}
}

// Rarities a feature gets when it is switched on without one.
const (
	DefaultMushroomRarity = 0.05
	DefaultVinesRarity    = 0.2
	DefaultChestRarity    = 0.6
)

// DefaultFeatures returns the feature selection a target starts with.
func DefaultFeatures(target string) *Features {
	f := &Features{NoiseScale: &NoiseScale{X: 0.075, Y: 0.075, Z: 0.075}}
	if target == TargetPOI {
		f.RiftChests = &RiftChests{
			Rarity:        DefaultChestRarity,
			BaseLootTable: "wotr:chests/",
			ChestTypes:    []ChestType{{ChestType: "wooden", Weight: 1}},
		}
	}
	return f
}

// Enable switches on a named feature at its default rarity. Features that
// are already configured keep their settings.
func (f *Features) Enable(name string) error {
	switch name {
	case "mushrooms":
		if f.Mushrooms == nil {
			f.Mushrooms = &Rarity{Rarity: DefaultMushroomRarity}
		}
	case "vines":
		if f.Vines == nil {
			f.Vines = &Rarity{Rarity: DefaultVinesRarity}
		}
	case "chests", "rift_chests":
		if f.RiftChests == nil {
			f.RiftChests = DefaultFeatures(TargetPOI).RiftChests
		}
	default:
		return errors.Errorf("unknown feature %q", name)
	}
	return nil
}

// Enable switches on a named feature, starting from the target's defaults
// when nothing is selected yet. The selection then counts as explicit and
// survives a later WithTarget.
func (c *Config) Enable(name string) error {
	f := DefaultFeatures(c.Target)
	if c.Features != nil {
		copied := *c.Features
		f = &copied
	}
	c.Features, c.targetFeatures = f, false
	return f.Enable(name)
}

var validate = validator.New()

// Validate checks the config for values no stage can work with.
func (c *Config) Validate() error {
	return errors.Wrap(validate.Struct(c), "invalid config")
}

// WithTarget sets the target. Features that were never configured
// explicitly are replaced by the new target's defaults.
func (c *Config) WithTarget(target string) {
	c.Target = target
	if c.Features != nil && !c.targetFeatures {
		return
	}
	c.Features, c.targetFeatures = nil, false
	if target != "" {
		c.Features, c.targetFeatures = DefaultFeatures(target), true
	}
}

// Options returns the extraction options for processor n.
func (c *Config) Options(n int) weights.Options {
	return weights.Options{
		ProcessorID: weights.ProcessorID(c.PlaceholderPrefix, n),
		Schema:      weights.RoleSchema(c.RoleSchema),
		Ignored:     weights.NewBlockSet(c.IgnoredBlocks...),
		Precision:   c.RoundingPrecision,
	}
}

// Parse reads YAML over the defaults.
func Parse(raw []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, errors.Wrap(err, "config yaml")
	}
	if c.Features == nil {
		c.WithTarget(c.Target)
	}
	return c, c.Validate()
}

// Load reads the config at path; an empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		c := Default()
		return c, c.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Default(), err
	}
	c, err := Parse(raw)
	return c, errors.Wrapf(err, "%s", path)
}
