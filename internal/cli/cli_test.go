package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics-installer/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestValidateValidMaps(t *testing.T) {
	out, err := execute(t, "validate", testdata("torso.json"), testdata("collar.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/torso.json: Haptic-Prefab_torso_carol, 3 nodes (3 placed)")
	assert.Contains(t, out, "✓ testdata/collar.json")
}

func TestValidateInvalidMapJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", testdata("torso.json"), testdata("bad.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	details, ok := resp.Error.Details.([]any)
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", testdata("torso.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBakeFitStoreAndList(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "bakes.db")
	previews := filepath.Join(dir, "previews")

	out, err := execute(t, "--format", "json", "bake",
		"--rig", testdata("avatar.yaml"),
		"--map", testdata("torso.json"),
		"--map", testdata("collar.json"),
		"--fit",
		"--store", db,
		"--preview", previews,
		"--workers", "2",
	)
	require.NoError(t, err, out)

	var resp struct {
		Status string      `json:"status"`
		Data   BakeSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	s := resp.Data
	assert.Equal(t, "TestAvatar", s.Avatar)
	assert.Equal(t, []string{"Haptic-Prefab_torso_carol", "Haptic-Prefab_collar_dan"}, s.Prefabs)
	require.Len(t, s.Groups, 3)
	assert.Equal(t, "Chest", s.Groups[0].Bone.String())
	assert.Equal(t, 2, s.Groups[0].Nodes)
	assert.Equal(t, map[string][]string{"Haptic-Prefab_torso_carol": {"2_torso"}}, s.Flagged)
	assert.NotEmpty(t, s.BakeID)
	assert.Len(t, s.Previews, 4)

	_, err = os.Stat(filepath.Join(previews, "manifest.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(previews, "Chest.webp"))
	assert.NoError(t, err)

	out, err = execute(t, "list", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, s.BakeID)
	assert.Contains(t, out, "TestAvatar")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	rec, err := st.GetBake(context.Background(), s.BakeID)
	require.NoError(t, err)
	assert.Equal(t, s.Flagged, rec.Flagged)
}

func TestBakeStrictFailsOnFlagged(t *testing.T) {
	out, err := execute(t, "bake",
		"--rig", testdata("avatar.yaml"),
		"--map", testdata("torso.json"),
		"--fit", "--strict",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Flagged in Haptic-Prefab_torso_carol: 2_torso")
}

func TestBakeFlagsByNodeName(t *testing.T) {
	out, err := execute(t, "--format", "json", "bake",
		"--rig", testdata("avatar.yaml"),
		"--map", testdata("sleeve.json"),
		"--fit",
	)
	require.NoError(t, err, out)

	var resp struct {
		Data BakeSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, map[string][]string{"Haptic-Prefab_sleeve_erin": {"1_sleeve"}}, resp.Data.Flagged)
}

func TestBakeSummaryFlaggedOrder(t *testing.T) {
	s := BakeSummary{
		Avatar: "A",
		Flagged: map[string][]string{
			"Haptic-Prefab_zip_x":  {"4_zip"},
			"Haptic-Prefab_arm_y":  {"0_arm", "2_arm"},
			"Haptic-Prefab_belt_z": {"1_belt"},
		},
	}
	for i := 0; i < 5; i++ {
		assert.Contains(t, s.String(), "Flagged in Haptic-Prefab_arm_y: 0_arm, 2_arm\n"+
			"Flagged in Haptic-Prefab_belt_z: 1_belt\n"+
			"Flagged in Haptic-Prefab_zip_x: 4_zip")
	}
}

func TestBakeRejectsInvalidMap(t *testing.T) {
	_, err := execute(t, "bake", "--rig", testdata("avatar.yaml"), "--map", testdata("bad.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestBakeMissingRig(t *testing.T) {
	_, err := execute(t, "bake", "--rig", testdata("nope.yaml"), "--map", testdata("torso.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestListEmptyStore(t *testing.T) {
	out, err := execute(t, "list", "--store", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No bakes stored.")
}

func TestExitError(t *testing.T) {
	err := WrapExitError(ExitCommandError, "open store", os.ErrNotExist)
	assert.Equal(t, "open store: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
