package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"haptics-installer/internal/mesh"
	"haptics-installer/internal/optimize"
	"haptics-installer/internal/scene"
)

// SaveBake stores b in one transaction and returns its new id (a UUIDv7,
// so ids sort by creation time).
func (s *Store) SaveBake(ctx context.Context, b optimize.Bake) (string, error) {
	if b.Root == nil {
		return "", fmt.Errorf("save bake %s: nil root", b.Name)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("save bake %s: id: %w", b.Name, err)
	}

	snap, err := scene.TakeSnapshot(b.Root)
	if err != nil {
		return "", fmt.Errorf("save bake %s: %w", b.Name, err)
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("save bake %s: snapshot: %w", b.Name, err)
	}
	groups := b.Groups
	if groups == nil {
		groups = []optimize.GroupSummary{}
	}
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("save bake %s: groups: %w", b.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save bake %s: begin: %w", b.Name, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bakes (id, name, created_at, parameter_cost, groups_json, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), b.Name, s.now().UTC().Format(time.RFC3339Nano), b.ParameterCost, string(groupsJSON), string(snapJSON))
	if err != nil {
		return "", fmt.Errorf("save bake %s: insert: %w", b.Name, err)
	}

	var meshErr error
	b.Root.Walk(func(o *scene.Object) bool {
		r, ok := scene.Get[*scene.Renderer](o)
		if !ok || r.Mesh == nil {
			return true
		}
		meshErr = insertMesh(ctx, tx, id.String(), o.Path(), r.Mesh)
		return meshErr == nil
	})
	if meshErr != nil {
		return "", fmt.Errorf("save bake %s: %w", b.Name, meshErr)
	}

	if b.Report != nil {
		for i, e := range b.Report.Entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO diagnostics (bake_id, seq, kind, severity, subject, message)
				VALUES (?, ?, ?, ?, ?, ?)
			`, id.String(), i, e.Kind.String(), e.Severity.String(), e.Subject, e.Message)
			if err != nil {
				return "", fmt.Errorf("save bake %s: diagnostic %d: %w", b.Name, i, err)
			}
		}
	}

	for prefab, nodes := range b.Flagged {
		for i, node := range nodes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO flagged (bake_id, prefab, seq, node)
				VALUES (?, ?, ?, ?)
			`, id.String(), prefab, i, node)
			if err != nil {
				return "", fmt.Errorf("save bake %s: flagged %s: %w", b.Name, node, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save bake %s: commit: %w", b.Name, err)
	}
	return id.String(), nil
}

func insertMesh(ctx context.Context, tx *sql.Tx, bakeID, path string, m *mesh.Mesh) error {
	parts := m.Parts
	if parts == nil {
		parts = []mesh.Part{}
	}
	partsJSON, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("mesh %s: parts: %w", path, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO meshes (bake_id, path, name, vertices, indices, parts_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bakeID, path, m.Name, encodeVertices(m.Vertices), encodeIndices(m.Indices), string(partsJSON))
	if err != nil {
		return fmt.Errorf("mesh %s: %w", path, err)
	}
	return nil
}
