// Package hapticmap reads haptic map files: the per-map metadata and the
// list of sensor node records authored against humanoid bones.
package hapticmap

import (
	"encoding/json"
	"fmt"
	"os"

	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/mathutil"
)

// AddressPrefix is the prefix every node address must carry.
const AddressPrefix = "/avatar/parameters/"

// NodeData is the authored local position plus optional group tags.
type NodeData struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Z      float64  `json:"z"`
	Groups []string `json:"groups,omitempty"`
}

// Node is one sensor record. It is never modified after loading.
type Node struct {
	NodeData          NodeData      `json:"node_data"`
	Address           string        `json:"address"`
	IsExternalAddress bool          `json:"is_external_address"`
	Radius            float64       `json:"radius"`
	TargetBone        humanoid.Bone `json:"target_bone"`
}

// Position returns the authored position as a vector.
func (n Node) Position() mathutil.Vec3 {
	return mathutil.Vec3{n.NodeData.X, n.NodeData.Y, n.NodeData.Z}
}

// MenuMeta is the optional menu section of the metadata.
type MenuMeta struct {
	Intensity string `json:"intensity,omitempty"`
}

// Meta identifies a map.
type Meta struct {
	MapName    string    `json:"map_name"`
	MapVersion int       `json:"map_version"`
	MapAuthor  string    `json:"map_author"`
	Menu       *MenuMeta `json:"menu,omitempty"`
}

// Config is a whole map file.
type Config struct {
	Nodes []Node `json:"nodes"`
	Meta  Meta   `json:"meta"`

	// Source is the file the config came from, if any.
	Source string `json:"-"`
}

// PrefabName is the name of the object the builder creates for the map.
func (c *Config) PrefabName() string {
	return fmt.Sprintf("Haptic-Prefab_%s_%s", c.Meta.MapName, c.Meta.MapAuthor)
}

// PrefabPath is where the host asset database stores the built prefab.
func (c *Config) PrefabPath() string {
	return fmt.Sprintf("Assets/Haptics/%s_%s_%d.prefab", c.Meta.MapAuthor, c.Meta.MapName, c.Meta.MapVersion)
}

// PlacedNodes counts the nodes that are not external.
func (c *Config) PlacedNodes() int {
	n := 0
	for _, node := range c.Nodes {
		if !node.IsExternalAddress {
			n++
		}
	}
	return n
}

// Bones lists the distinct target bones in first-use order.
func (c *Config) Bones() []humanoid.Bone {
	seen := make(map[humanoid.Bone]bool)
	var out []humanoid.Bone
	for _, node := range c.Nodes {
		if !seen[node.TargetBone] {
			seen[node.TargetBone] = true
			out = append(out, node.TargetBone)
		}
	}
	return out
}

// Parse validates data against the map schema and decodes it.
func Parse(data []byte, source string) (*Config, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return v.Parse(data, source)
}

// Load reads and parses a map file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hapticmap: read %s: %w", path, err)
	}
	return Parse(data, path)
}

func decode(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("hapticmap: decode %s: %w", source, err)
	}
	cfg.Source = source
	return &cfg, nil
}
