// Package humanoid defines the canonical humanoid bone identifiers that
// sensor nodes bind to, and parses the human-readable names rigs use.
package humanoid

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Bone identifies one standard humanoid skeletal bone. The numbering
// matches the host engine's humanoid bone table.
type Bone int

const (
	Hips Bone = iota
	LeftUpperLeg
	RightUpperLeg
	LeftLowerLeg
	RightLowerLeg
	LeftFoot
	RightFoot
	Spine
	Chest
	Neck
	Head
	LeftShoulder
	RightShoulder
	LeftUpperArm
	RightUpperArm
	LeftLowerArm
	RightLowerArm
	LeftHand
	RightHand
	LeftToes
	RightToes
	LeftEye
	RightEye
	Jaw
	LeftThumbProximal
	LeftThumbIntermediate
	LeftThumbDistal
	LeftIndexProximal
	LeftIndexIntermediate
	LeftIndexDistal
	LeftMiddleProximal
	LeftMiddleIntermediate
	LeftMiddleDistal
	LeftRingProximal
	LeftRingIntermediate
	LeftRingDistal
	LeftLittleProximal
	LeftLittleIntermediate
	LeftLittleDistal
	RightThumbProximal
	RightThumbIntermediate
	RightThumbDistal
	RightIndexProximal
	RightIndexIntermediate
	RightIndexDistal
	RightMiddleProximal
	RightMiddleIntermediate
	RightMiddleDistal
	RightRingProximal
	RightRingIntermediate
	RightRingDistal
	RightLittleProximal
	RightLittleIntermediate
	RightLittleDistal
	UpperChest

	// LastBone is one past the final valid bone.
	LastBone
)

var boneNames = [LastBone]string{
	"Hips", "LeftUpperLeg", "RightUpperLeg", "LeftLowerLeg", "RightLowerLeg",
	"LeftFoot", "RightFoot", "Spine", "Chest", "Neck", "Head",
	"LeftShoulder", "RightShoulder", "LeftUpperArm", "RightUpperArm",
	"LeftLowerArm", "RightLowerArm", "LeftHand", "RightHand",
	"LeftToes", "RightToes", "LeftEye", "RightEye", "Jaw",
	"LeftThumbProximal", "LeftThumbIntermediate", "LeftThumbDistal",
	"LeftIndexProximal", "LeftIndexIntermediate", "LeftIndexDistal",
	"LeftMiddleProximal", "LeftMiddleIntermediate", "LeftMiddleDistal",
	"LeftRingProximal", "LeftRingIntermediate", "LeftRingDistal",
	"LeftLittleProximal", "LeftLittleIntermediate", "LeftLittleDistal",
	"RightThumbProximal", "RightThumbIntermediate", "RightThumbDistal",
	"RightIndexProximal", "RightIndexIntermediate", "RightIndexDistal",
	"RightMiddleProximal", "RightMiddleIntermediate", "RightMiddleDistal",
	"RightRingProximal", "RightRingIntermediate", "RightRingDistal",
	"RightLittleProximal", "RightLittleIntermediate", "RightLittleDistal",
	"UpperChest",
}

var folder = cases.Fold()

// byFoldedName maps case-folded names to bones.
var byFoldedName = func() map[string]Bone {
	m := make(map[string]Bone, len(boneNames))
	for i, n := range boneNames {
		m[folder.String(n)] = Bone(i)
	}
	return m
}()

// String returns the canonical bone name, e.g. "LeftUpperArm".
func (b Bone) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Bone(%d)", int(b))
	}
	return boneNames[b]
}

// Valid reports whether b names a real bone.
func (b Bone) Valid() bool {
	return b >= 0 && b < LastBone
}

// Normalize strips every whitespace rune from a rig's human bone name, so
// "Left Upper Arm" becomes "LeftUpperArm".
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// Parse resolves a human bone name case-insensitively after Normalize.
func Parse(name string) (Bone, error) {
	if b, ok := byFoldedName[folder.String(Normalize(name))]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("humanoid: unknown bone %q", name)
}

// All returns every valid bone in table order.
func All() []Bone {
	out := make([]Bone, LastBone)
	for i := range out {
		out[i] = Bone(i)
	}
	return out
}

// MarshalText encodes the bone by name.
func (b Bone) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("humanoid: invalid bone %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a bone name; config files use the canonical names.
func (b *Bone) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
