package asset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/mesh"
)

// LoadOBJ reads a Wavefront OBJ file into a single-part mesh named after
// the file.
func LoadOBJ(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj: open %s: %w", path, err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := ReadOBJ(f, name)
	if err != nil {
		return nil, fmt.Errorf("obj: %s: %w", path, err)
	}
	return m, nil
}

// ReadOBJ parses vertex positions and faces. Polygons with more than three
// corners are split into a triangle fan (a quad 0-1-2-3 becomes 0-1-2 and
// 0-2-3). Texture coordinates, normals, groups and materials are ignored;
// normals are recomputed from the faces.
func ReadOBJ(r io.Reader, name string) (*mesh.Mesh, error) {
	m := &mesh.Mesh{Name: name}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			idx, err := parseFace(fields[1:], len(m.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			for i := 1; i+1 < len(idx); i++ {
				m.Indices = append(m.Indices, idx[0], idx[i], idx[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	m.Parts = []mesh.Part{{Start: 0, Count: len(m.Indices)}}
	m.RecalculateNormals()
	m.RecalculateBounds()
	return m, nil
}

// v <x> <y> <z> [w]
func parseVertex(fields []string) (mathutil.Vec3, error) {
	if len(fields) < 3 {
		return mathutil.Vec3{}, fmt.Errorf("vertex with %d coordinates", len(fields))
	}
	var v mathutil.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

// f <v>[/vt[/vn]] ... with 1-based or negative (relative) indices.
func parseFace(fields []string, nverts int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face with %d corners", len(fields))
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		vs, _, _ := strings.Cut(f, "/")
		val, err := strconv.Atoi(vs)
		if err != nil {
			return nil, err
		}
		switch {
		case val > 0:
			out[i] = val - 1
		case val < 0:
			out[i] = nverts + val
		default:
			return nil, fmt.Errorf("face vertex index 0")
		}
		if out[i] < 0 || out[i] >= nverts {
			return nil, fmt.Errorf("face vertex index %d out of range", val)
		}
	}
	return out, nil
}
