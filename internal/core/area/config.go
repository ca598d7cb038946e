package area

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/geom"
)

// DefaultLaboratory is where the laboratory stands when the map does not say.
var DefaultLaboratory = geom.Pt(34, 19)

// MapConfig describes one planet map.
type MapConfig struct {
	MapName         string   `json:"mapName" yaml:"mapName"`
	Terrain         Terrain  `json:"terrain" yaml:"terrain"`
	Textures        []string `json:"textures,omitempty" yaml:"textures,omitempty"`
	TextureAtlases  []string `json:"textureAtlases,omitempty" yaml:"textureAtlases,omitempty"`
	Sounds          []string `json:"sounds,omitempty" yaml:"sounds,omitempty"`
	BackgroundMusic string   `json:"backgroundMusic,omitempty" yaml:"backgroundMusic,omitempty"`

	WinConditions WinConditions `json:"winConditions" yaml:"winConditions"`

	Player    *Placed        `json:"player,omitempty" yaml:"player,omitempty"`
	Companion *Placed        `json:"companion,omitempty" yaml:"companion,omitempty"`
	Entities  *EntityConfigs `json:"entities,omitempty" yaml:"entities,omitempty"`
}

// WinConditions holds the resource amounts the ship needs to leave.
type WinConditions struct {
	Solstite int `json:"Solstite" yaml:"Solstite"`
}

// Placed is anything with a tile position.
type Placed struct {
	Position geom.GridPoint `json:"position" yaml:"position"`
}

// EntityConfigs lists the entities spawned on the map.
type EntityConfigs struct {
	Powerups     []PowerupConfig   `json:"powerups,omitempty" yaml:"powerups,omitempty"`
	Extractors   []ExtractorConfig `json:"extractors,omitempty" yaml:"extractors,omitempty"`
	Enemies      []Placed          `json:"enemies,omitempty" yaml:"enemies,omitempty"`
	Turrets      []Placed          `json:"turrets,omitempty" yaml:"turrets,omitempty"`
	Portals      []Placed          `json:"portals,omitempty" yaml:"portals,omitempty"`
	Walls        []geom.GridPoint  `json:"walls,omitempty" yaml:"walls,omitempty"`
	Ship         *Placed           `json:"ship,omitempty" yaml:"ship,omitempty"`
	UpgradeBench *Placed           `json:"upgradeBench,omitempty" yaml:"upgradeBench,omitempty"`
	Laboratory   *Placed           `json:"laboratory,omitempty" yaml:"laboratory,omitempty"`
}

type PowerupConfig struct {
	Type     components.PowerupType `json:"type" yaml:"type"`
	Position geom.GridPoint         `json:"position" yaml:"position"`
}

type ExtractorConfig struct {
	Position geom.GridPoint `json:"position" yaml:"position"`
	Health   int            `json:"health" yaml:"health"`
	Resource string         `json:"resource" yaml:"resource"`
	TickRate time.Duration  `json:"tickRate" yaml:"tickRate"`
	TickSize int            `json:"tickSize" yaml:"tickSize"`
}

// Assets lists every asset path the map needs loaded.
func (c MapConfig) Assets() []string {
	var paths []string
	paths = append(paths, c.Textures...)
	paths = append(paths, c.TextureAtlases...)
	paths = append(paths, c.Sounds...)
	if c.BackgroundMusic != "" {
		paths = append(paths, c.BackgroundMusic)
	}
	return paths
}

// InvalidConfigError reports the first offending field of a map config.
type InvalidConfigError struct {
	Field string
	Err   error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid map config: %s: %v", e.Field, e.Err)
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

var (
	errRequired    = errors.New("required")
	errNotPositive = errors.New("must be positive")
	errOutOfMap    = errors.New("outside the map")
)

func invalid(field string, err error) error { return &InvalidConfigError{Field: field, Err: err} }

// Validate checks the config against its own terrain bounds.
func (c MapConfig) Validate() error {
	if c.Terrain.Width <= 0 {
		return invalid("terrain.width", errNotPositive)
	}
	if c.Terrain.Height <= 0 {
		return invalid("terrain.height", errNotPositive)
	}
	if c.Terrain.Tile < 0 {
		return invalid("terrain.tileSize", errNotPositive)
	}
	if c.WinConditions.Solstite < 0 {
		return invalid("winConditions.Solstite", errNotPositive)
	}

	inMap := func(field string, p geom.GridPoint) error {
		b := c.Terrain.Bounds()
		if p.X < 0 || p.Y < 0 || p.X >= b.X || p.Y >= b.Y {
			return invalid(field, fmt.Errorf("%s %w", p, errOutOfMap))
		}
		return nil
	}
	placed := func(field string, p *Placed) error {
		if p == nil {
			return nil
		}
		return inMap(field+".position", p.Position)
	}
	if err := errors.Join(placed("player", c.Player), placed("companion", c.Companion)); err != nil {
		return err
	}

	es := c.Entities
	if es == nil {
		return nil
	}
	for i, p := range es.Powerups {
		field := fmt.Sprintf("entities.powerups[%d]", i)
		if !p.Type.Valid() {
			return invalid(field+".type", components.ErrInvalidPowerupType)
		}
		if err := inMap(field+".position", p.Position); err != nil {
			return err
		}
	}
	for i, x := range es.Extractors {
		field := fmt.Sprintf("entities.extractors[%d]", i)
		switch {
		case x.Resource == "":
			return invalid(field+".resource", errRequired)
		case x.Health <= 0:
			return invalid(field+".health", errNotPositive)
		case x.TickRate <= 0:
			return invalid(field+".tickRate", errNotPositive)
		}
		if err := inMap(field+".position", x.Position); err != nil {
			return err
		}
	}
	for group, list := range map[string][]Placed{"enemies": es.Enemies, "turrets": es.Turrets, "portals": es.Portals} {
		for i, p := range list {
			if err := inMap(fmt.Sprintf("entities.%s[%d].position", group, i), p.Position); err != nil {
				return err
			}
		}
	}
	for i, w := range es.Walls {
		if err := inMap(fmt.Sprintf("entities.walls[%d]", i), w); err != nil {
			return err
		}
	}
	return errors.Join(
		placed("entities.ship", es.Ship),
		placed("entities.upgradeBench", es.UpgradeBench),
		placed("entities.laboratory", es.Laboratory),
	)
}

// LoadYAML decodes and validates a map config.
func LoadYAML(r io.Reader) (MapConfig, error) {
	var c MapConfig
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return MapConfig{}, invalid("yaml", err)
	}
	if err := c.Validate(); err != nil {
		return MapConfig{}, err
	}
	return c, nil
}

// LoadJSON decodes and validates a map config.
func LoadJSON(r io.Reader) (MapConfig, error) {
	var c MapConfig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return MapConfig{}, invalid("json", err)
	}
	if err := c.Validate(); err != nil {
		return MapConfig{}, err
	}
	return c, nil
}

// LoadFile picks the decoder by extension. ".json" is JSON, anything else
// YAML.
func LoadFile(path string) (MapConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return MapConfig{}, invalid("path", err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}
