package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"tusk-arena/server/internal/sim"
)

// ArenaDefinition is one designer-authored arena as it appears on disk. The
// struct is exported so tooling (the schema generator) can reflect over the
// configuration contract shared with designers.
type ArenaDefinition struct {
	ID             uint32  `json:"id" jsonschema:"title=Arena ID,description=Numeric identifier clients send in JOIN frames.,minimum=1,required"`
	Name           string  `json:"name" jsonschema:"title=Arena Name,description=Display name shown in the lobby browser.,minLength=1,required"`
	Width          float64 `json:"width" jsonschema:"title=Width,description=Playfield width in world units.,minimum=400,required"`
	Height         float64 `json:"height" jsonschema:"title=Height,description=Playfield height in world units.,minimum=400,required"`
	DesiredPlayers int     `json:"desiredPlayerCount" jsonschema:"title=Desired Player Count,description=Soft capacity advertised in the lobby list.,minimum=1"`
	FieldType      string  `json:"fieldType" jsonschema:"title=Field Type,description=Client-side background and tileset selector."`
	Seed           int64   `json:"seed" jsonschema:"title=Seed,description=Fixed RNG seed; zero picks a per-arena default."`
}

// FileDefinitions is the top-level document in config/arenas.json.
type FileDefinitions struct {
	Arenas []ArenaDefinition `json:"arenas" jsonschema:"title=Arenas,description=All arenas the server hosts.,required"`
}

// Defaults returns the built-in arena set used when no catalog file exists.
func Defaults() []ArenaDefinition {
	return []ArenaDefinition{
		{ID: 1, Name: "Open Waters", Width: 4000, Height: 4000, DesiredPlayers: 40, FieldType: "ocean", Seed: 1},
		{ID: 2, Name: "The Shallows", Width: 2400, Height: 2400, DesiredPlayers: 16, FieldType: "reef", Seed: 2},
	}
}

// Load reads and validates an arena catalog. A missing file falls back to the
// built-in defaults so a bare checkout still boots.
func Load(path string) ([]ArenaDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("catalog: failed loading %s: %w", path, err)
	}
	defs, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed parsing %s: %w", path, err)
	}
	return defs, nil
}

func decode(data []byte) ([]ArenaDefinition, error) {
	var file FileDefinitions
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Arenas) == 0 {
		return nil, fmt.Errorf("no arenas defined")
	}
	seen := make(map[uint32]struct{}, len(file.Arenas))
	for i := range file.Arenas {
		def := &file.Arenas[i]
		if def.ID == 0 {
			return nil, fmt.Errorf("arena %d: id must be positive", i)
		}
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("duplicate arena id %d", def.ID)
		}
		seen[def.ID] = struct{}{}
		if strings.TrimSpace(def.Name) == "" {
			return nil, fmt.Errorf("arena %d: missing name", def.ID)
		}
		if def.Width < 2*sim.SpawnMargin || def.Height < 2*sim.SpawnMargin {
			return nil, fmt.Errorf("arena %d: playfield smaller than the spawn margin", def.ID)
		}
		applyDefaults(def)
	}
	return file.Arenas, nil
}

func applyDefaults(def *ArenaDefinition) {
	if def.DesiredPlayers <= 0 {
		def.DesiredPlayers = 20
	}
	if def.FieldType == "" {
		def.FieldType = "ocean"
	}
	if def.Seed == 0 {
		def.Seed = int64(def.ID)
	}
}

// RoomConfigs converts catalog definitions into the simulation's room configs.
func RoomConfigs(defs []ArenaDefinition) []sim.RoomConfig {
	configs := make([]sim.RoomConfig, 0, len(defs))
	for _, def := range defs {
		configs = append(configs, sim.RoomConfig{
			ID:             def.ID,
			Name:           def.Name,
			Width:          def.Width,
			Height:         def.Height,
			DesiredPlayers: def.DesiredPlayers,
			FieldType:      def.FieldType,
			Seed:           def.Seed,
		})
	}
	return configs
}
