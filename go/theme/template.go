package theme

import (
	"github.com/pkg/errors"

	"github.com/wotr-tools/blockweights/go/config"
	"github.com/wotr-tools/blockweights/go/schem"
	"github.com/wotr-tools/blockweights/go/weights"
)

// TemplateFill is the block every non-placeholder voxel of a blank template holds.
const TemplateFill = "minecraft:air"

// Template builds a blank template for processor n: one column per role
// schema entry, each depth blocks deep and height blocks high, with its
// placeholder at the base.
func Template(cfg config.Config, n, depth, height int) (*schem.Schematic, error) {
	if n < 1 || depth < 1 || height < 1 {
		return nil, errors.Errorf("template processor %d of %dx%d is empty", n, depth, height)
	}
	pid := weights.ProcessorID(cfg.PlaceholderPrefix, n)
	schema := weights.RoleSchema(cfg.RoleSchema)
	length := len(schema)

	blocks := make([]string, depth*height*length)
	for i := range blocks {
		blocks[i] = TemplateFill
	}
	for z := 0; z < length; z++ {
		blocks[z*depth] = pid + schema.Suffix(z)
	}
	return schem.FromBlocks(depth, height, length, blocks)
}
