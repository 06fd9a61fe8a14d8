package asset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"haptics-installer/internal/mesh"
)

// textureExts are tried in order next to an OBJ file.
var textureExts = []string{".tga", ".png", ".jpg", ".jpeg"}

// DirLibrary loads visuals from <Root>/<path>.obj, with an optional texture
// of the same base name. Loaded visuals are cached; callers get their own
// material copy but share the mesh.
type DirLibrary struct {
	Root     string
	Textures *TextureCache

	mu      sync.RWMutex
	visuals map[string]*Visual
}

// NewDirLibrary returns a library rooted at root.
func NewDirLibrary(root string) *DirLibrary {
	return &DirLibrary{Root: root, Textures: NewTextureCache(), visuals: make(map[string]*Visual)}
}

func (d *DirLibrary) LoadVisual(path string) (*Visual, error) {
	d.mu.RLock()
	if v, ok := d.visuals[path]; ok {
		d.mu.RUnlock()
		return &Visual{Path: v.Path, Mesh: v.Mesh, Material: v.Material.Clone()}, nil
	}
	d.mu.RUnlock()

	objPath := filepath.Join(d.Root, filepath.FromSlash(path)+".obj")
	m, err := LoadOBJ(objPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("asset: %s: %w", objPath, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	mat := DefaultMaterial()
	mat.Name = filepath.Base(path)
	base := filepath.Join(d.Root, filepath.FromSlash(path))
	for _, ext := range textureExts {
		tp := base + ext
		if _, err := os.Stat(tp); err != nil {
			continue
		}
		if img := d.Textures.Resolve(tp); img != nil {
			mat.Texture = filepath.ToSlash(path) + ext
			mat.Color = averageColor(img, mat.Color.A)
		}
		break
	}

	v := &Visual{Path: path, Mesh: m, Material: mat}
	d.mu.Lock()
	if cached, ok := d.visuals[path]; ok {
		v = cached
	} else {
		d.visuals[path] = v
	}
	d.mu.Unlock()
	return &Visual{Path: v.Path, Mesh: v.Mesh, Material: v.Material.Clone()}, nil
}

// LoadBodyMesh reads an OBJ body surface relative to the library root.
func (d *DirLibrary) LoadBodyMesh(rel string) (*mesh.Mesh, error) {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(d.Root, filepath.FromSlash(rel))
	}
	return LoadOBJ(p)
}

// averageColor is the mean of the opaque texels, keeping alpha.
func averageColor(img *image.NRGBA, alpha uint8) color.NRGBA {
	var r, g, b, n uint64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		r += uint64(img.Pix[i])
		g += uint64(img.Pix[i+1])
		b += uint64(img.Pix[i+2])
		n++
	}
	if n == 0 {
		return color.NRGBA{A: alpha}
	}
	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: alpha}
}
