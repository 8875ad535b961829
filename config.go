package granary

import "github.com/TheBitDrifter/table"

// ChunkLen is the fixed power-of-two row width of an archetype chunk,
// 16x16 = 256 rows. It must stay a power of two so row index to chunk
// index is a shift.
const ChunkLen = 256

// MaxSpawnReserve bounds the capacity SpawnBatchN preallocates up front for
// its returned id slice on a very large batch.
const MaxSpawnReserve = 4096

// chunkOf returns the chunk index a row belongs to.
func chunkOf(row int) int {
	return row / ChunkLen
}

// Config holds process-wide knobs affecting storage construction.
var Config config = config{}

type config struct {
	tableEvents table.TableEvents
}

// SetTableEvents configures the table.TableEvents callbacks every
// archetype's table is built with.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}
