package schem

import "strings"

type rename struct {
	from, to string
}

type renameStep struct {
	version int
	renames []rename
}

// Block renames keyed by the DataVersion that introduced them, without the
// minecraft: namespace. Sourced from the datafixer schemas in the game jar.
var renameSteps = []renameStep{
	{1474, []rename{
		{"purple_shulker_box", "shulker_box"},
	}},
	{1475, []rename{
		{"flowing_water", "water"},
		{"flowing_lava", "lava"},
	}},
	{1480, []rename{
		{"blue_coral", "tube_coral_block"},
		{"pink_coral", "brain_coral_block"},
		{"purple_coral", "bubble_coral_block"},
		{"red_coral", "fire_coral_block"},
		{"yellow_coral", "horn_coral_block"},
		{"blue_coral_plant", "tube_coral"},
		{"pink_coral_plant", "brain_coral"},
		{"purple_coral_plant", "bubble_coral"},
		{"red_coral_plant", "fire_coral"},
		{"yellow_coral_plant", "horn_coral"},
		{"blue_coral_fan", "tube_coral_fan"},
		{"pink_coral_fan", "brain_coral_fan"},
		{"purple_coral_fan", "bubble_coral_fan"},
		{"red_coral_fan", "fire_coral_fan"},
		{"yellow_coral_fan", "horn_coral_fan"},
		{"blue_dead_coral", "dead_tube_coral"},
		{"pink_dead_coral", "dead_brain_coral"},
		{"purple_dead_coral", "dead_bubble_coral"},
		{"red_dead_coral", "dead_fire_coral"},
		{"yellow_dead_coral", "dead_horn_coral"},
	}},
	{1484, []rename{
		{"sea_grass", "seagrass"},
		{"tall_sea_grass", "tall_seagrass"},
	}},
	{1487, []rename{
		{"prismarine_bricks_slab", "prismarine_brick_slab"},
		{"prismarine_bricks_stairs", "prismarine_brick_stairs"},
	}},
	{1488, []rename{
		{"kelp_top", "kelp"},
		{"kelp", "kelp_plant"},
	}},
	{1490, []rename{
		{"melon_block", "melon"},
	}},
	{1510, []rename{
		{"portal", "nether_portal"},
		{"oak_bark", "oak_wood"},
		{"spruce_bark", "spruce_wood"},
		{"birch_bark", "birch_wood"},
		{"jungle_bark", "jungle_wood"},
		{"acacia_bark", "acacia_wood"},
		{"dark_oak_bark", "dark_oak_wood"},
		{"stripped_oak_bark", "stripped_oak_wood"},
		{"stripped_spruce_bark", "stripped_spruce_wood"},
		{"stripped_birch_bark", "stripped_birch_wood"},
		{"stripped_jungle_bark", "stripped_jungle_wood"},
		{"stripped_acacia_bark", "stripped_acacia_wood"},
		{"stripped_dark_oak_bark", "stripped_dark_oak_wood"},
		{"mob_spawner", "spawner"},
	}},
	{1515, []rename{
		{"tube_coral_fan", "tube_coral_wall_fan"},
		{"brain_coral_fan", "brain_coral_wall_fan"},
		{"bubble_coral_fan", "bubble_coral_wall_fan"},
		{"fire_coral_fan", "fire_coral_wall_fan"},
		{"horn_coral_fan", "horn_coral_wall_fan"},
	}},
	{1802, []rename{
		{"stone_slab", "smooth_stone_slab"},
		{"sign", "oak_sign"},
		{"wall_sign", "oak_wall_sign"},
	}},
	{2209, []rename{
		{"bee_hive", "beehive"},
	}},
	{2508, []rename{
		{"warped_fungi", "warped_fungus"},
		{"crimson_fungi", "crimson_fungus"},
	}},
	{2528, []rename{
		{"soul_fire_torch", "soul_torch"},
		{"soul_fire_wall_torch", "soul_wall_torch"},
		{"soul_fire_lantern", "soul_lantern"},
	}},
	{2679, []rename{
		// Technically this should be done based on the contents; properties
		// are already stripped, so empty cauldrons become water cauldrons too.
		{"cauldron", "water_cauldron"},
	}},
	{2680, []rename{
		{"grass_path", "dirt_path"},
	}},
	{2690, []rename{
		{"weathered_copper_block", "oxidized_copper_block"},
		{"semi_weathered_copper_block", "weathered_copper_block"},
		{"lightly_weathered_copper_block", "exposed_copper_block"},
		{"weathered_cut_copper", "oxidized_cut_copper"},
		{"semi_weathered_cut_copper", "weathered_cut_copper"},
		{"lightly_weathered_cut_copper", "exposed_cut_copper"},
		{"weathered_cut_copper_stairs", "oxidized_cut_copper_stairs"},
		{"semi_weathered_cut_copper_stairs", "weathered_cut_copper_stairs"},
		{"lightly_weathered_cut_copper_stairs", "exposed_cut_copper_stairs"},
		{"weathered_cut_copper_slab", "oxidized_cut_copper_slab"},
		{"semi_weathered_cut_copper_slab", "weathered_cut_copper_slab"},
		{"lightly_weathered_cut_copper_slab", "exposed_cut_copper_slab"},
		{"waxed_semi_weathered_copper", "waxed_weathered_copper"},
		{"waxed_lightly_weathered_copper", "waxed_exposed_copper"},
		{"waxed_semi_weathered_cut_copper", "waxed_weathered_cut_copper"},
		{"waxed_lightly_weathered_cut_copper", "waxed_exposed_cut_copper"},
		{"waxed_semi_weathered_cut_copper_stairs", "waxed_weathered_cut_copper_stairs"},
		{"waxed_lightly_weathered_cut_copper_stairs", "waxed_exposed_cut_copper_stairs"},
		{"waxed_semi_weathered_cut_copper_slab", "waxed_weathered_cut_copper_slab"},
		{"waxed_lightly_weathered_cut_copper_slab", "waxed_exposed_cut_copper_slab"},
	}},
	{2691, []rename{
		{"waxed_copper", "waxed_copper_block"},
		{"oxidized_copper_block", "oxidized_copper"},
		{"weathered_copper_block", "weathered_copper"},
		{"exposed_copper_block", "exposed_copper"},
	}},
	{2696, []rename{
		{"grimstone", "deepslate"},
		{"grimstone_slab", "cobbled_deepslate_slab"},
		{"grimstone_stairs", "cobbled_deepslate_stairs"},
		{"grimstone_wall", "cobbled_deepslate_wall"},
		{"polished_grimstone", "polished_deepslate"},
		{"polished_grimstone_slab", "polished_deepslate_slab"},
		{"polished_grimstone_stairs", "polished_deepslate_stairs"},
		{"polished_grimstone_wall", "polished_deepslate_wall"},
		{"grimstone_tiles", "deepslate_tiles"},
		{"grimstone_tile_slab", "deepslate_tile_slab"},
		{"grimstone_tile_stairs", "deepslate_tile_stairs"},
		{"grimstone_tile_wall", "deepslate_tile_wall"},
		{"grimstone_bricks", "deepslate_bricks"},
		{"grimstone_brick_slab", "deepslate_brick_slab"},
		{"grimstone_brick_stairs", "deepslate_brick_stairs"},
		{"grimstone_brick_wall", "deepslate_brick_wall"},
		{"chiseled_grimstone", "chiseled_deepslate"},
	}},
	{2700, []rename{
		{"cave_vines_head", "cave_vines"},
		{"cave_vines_body", "cave_vines_plant"},
	}},
	{2717, []rename{
		{"azalea_leaves_flowers", "flowering_azalea_leaves"},
	}},
	{3692, []rename{
		{"grass", "short_grass"},
	}},
	{4541, []rename{
		{"chain", "iron_chain"},
	}},
}

// MigrateName renames a block that was saved at DataVersion from so it
// matches the names used at DataVersion to. Renames chain across versions.
func MigrateName(name string, from, to int) string {
	if from >= to {
		return name
	}
	short, ok := strings.CutPrefix(name, "minecraft:")
	if !ok {
		return name
	}
	for _, step := range renameSteps {
		if step.version <= from {
			continue
		}
		if step.version > to {
			break
		}
		for _, r := range step.renames {
			if r.from == short {
				short = r.to
				break
			}
		}
	}
	return "minecraft:" + short
}

// Migrate rewrites the palette in place from the schematic's DataVersion to
// the given one. Schematics without a DataVersion are left alone.
func (s *Schematic) Migrate(to int) {
	if s.DataVersion == 0 || s.DataVersion >= to {
		return
	}
	for idx, name := range s.Palette {
		s.Palette[idx] = MigrateName(name, s.DataVersion, to)
	}
	s.DataVersion = to
}
