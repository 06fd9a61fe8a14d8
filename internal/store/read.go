package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"haptics-installer/internal/diag"
	"haptics-installer/internal/mesh"
	"haptics-installer/internal/optimize"
	"haptics-installer/internal/scene"
)

// Summary is one row of ListBakes.
type Summary struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	CreatedAt     time.Time               `json:"created_at"`
	ParameterCost int                     `json:"parameter_cost"`
	Groups        []optimize.GroupSummary `json:"groups"`
}

// Record is a stored bake read back in full.
type Record struct {
	Summary
	Snapshot    scene.Snapshot        `json:"snapshot"`
	Meshes      map[string]*mesh.Mesh `json:"-"`
	Diagnostics []diag.Entry          `json:"diagnostics"`
	Flagged     map[string][]string   `json:"flagged,omitempty"`
}

// ListBakes returns all bakes, newest first.
func (s *Store) ListBakes(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, parameter_cost, groups_json
		FROM bakes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list bakes: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("list bakes: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bakes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, extra ...any) (Summary, error) {
	var sum Summary
	var created, groups string
	dest := append([]any{&sum.ID, &sum.Name, &created, &sum.ParameterCost, &groups}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Summary{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Summary{}, fmt.Errorf("bake %s: created_at: %w", sum.ID, err)
	}
	sum.CreatedAt = t
	if err := json.Unmarshal([]byte(groups), &sum.Groups); err != nil {
		return Summary{}, fmt.Errorf("bake %s: groups: %w", sum.ID, err)
	}
	return sum, nil
}

// GetBake reads one bake with its meshes (keyed by object path) and
// diagnostics. Unknown ids give ErrNotFound.
func (s *Store) GetBake(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, parameter_cost, groups_json, snapshot_json
		FROM bakes
		WHERE id = ?
	`, id)
	var snap string
	sum, err := scanSummary(row, &snap)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bake %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bake %s: %w", id, err)
	}
	rec := &Record{Summary: sum}
	if err := json.Unmarshal([]byte(snap), &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("get bake %s: snapshot: %w", id, err)
	}
	if rec.Meshes, err = s.readMeshes(ctx, id); err != nil {
		return nil, fmt.Errorf("get bake %s: %w", id, err)
	}
	if rec.Diagnostics, err = s.readDiagnostics(ctx, id); err != nil {
		return nil, fmt.Errorf("get bake %s: %w", id, err)
	}
	if rec.Flagged, err = s.readFlagged(ctx, id); err != nil {
		return nil, fmt.Errorf("get bake %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) readMeshes(ctx context.Context, id string) (map[string]*mesh.Mesh, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, name, vertices, indices, parts_json
		FROM meshes
		WHERE bake_id = ?
		ORDER BY path
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query meshes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*mesh.Mesh)
	for rows.Next() {
		var path, parts string
		var verts, idx []byte
		m := &mesh.Mesh{}
		if err := rows.Scan(&path, &m.Name, &verts, &idx, &parts); err != nil {
			return nil, fmt.Errorf("scan mesh: %w", err)
		}
		if m.Vertices, err = decodeVertices(verts); err != nil {
			return nil, fmt.Errorf("mesh %s: %w", path, err)
		}
		if m.Indices, err = decodeIndices(idx); err != nil {
			return nil, fmt.Errorf("mesh %s: %w", path, err)
		}
		if err := json.Unmarshal([]byte(parts), &m.Parts); err != nil {
			return nil, fmt.Errorf("mesh %s: parts: %w", path, err)
		}
		m.RecalculateNormals()
		m.RecalculateBounds()
		out[path] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meshes: %w", err)
	}
	return out, nil
}

func (s *Store) readDiagnostics(ctx context.Context, id string) ([]diag.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, severity, subject, message
		FROM diagnostics
		WHERE bake_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	out := []diag.Entry{}
	for rows.Next() {
		var e diag.Entry
		var kind, sev string
		if err := rows.Scan(&kind, &sev, &e.Subject, &e.Message); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		if err := e.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		if err := e.Severity.UnmarshalText([]byte(sev)); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return out, nil
}

// readFlagged returns nil when the bake has no flagged nodes.
func (s *Store) readFlagged(ctx context.Context, id string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT prefab, node
		FROM flagged
		WHERE bake_id = ?
		ORDER BY prefab, seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query flagged: %w", err)
	}
	defer rows.Close()

	var out map[string][]string
	for rows.Next() {
		var prefab, node string
		if err := rows.Scan(&prefab, &node); err != nil {
			return nil, fmt.Errorf("scan flagged: %w", err)
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[prefab] = append(out[prefab], node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flagged: %w", err)
	}
	return out, nil
}
