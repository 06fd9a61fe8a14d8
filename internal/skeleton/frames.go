package skeleton

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/humanoid"
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/scene"
)

// Frame is the world-space transform of one bone at resolve time.
type Frame struct {
	Position mathutil.Vec3
	Rotation mgl64.Quat
	Up       mathutil.Vec3 // unit length
}

// Frames maps bones to their resolved frames. Missing keys mean the bone
// could not be resolved.
type Frames map[humanoid.Bone]Frame

// Lookup returns the frame for b.
func (f Frames) Lookup(b humanoid.Bone) (Frame, bool) {
	fr, ok := f[b]
	return fr, ok
}

// FrameOf captures the current world frame of o.
func FrameOf(o *scene.Object) Frame {
	rot := o.WorldRotation()
	return Frame{
		Position: o.WorldPosition(),
		Rotation: rot,
		Up:       mathutil.Normalize(rot.Rotate(mathutil.Up)),
	}
}

// ResolveFrames finds, for each humanoid mapping entry, the armature object
// named BoneName anywhere under root and records its frame under the parsed
// humanoid bone. Entries that cannot be located or parsed are logged and
// skipped, so the result may be partial. When a humanoid bone is mapped
// more than once the first entry wins and the others are logged.
func ResolveFrames(bones []HumanBone, root *scene.Object, log *slog.Logger) Frames {
	if log == nil {
		log = slog.Default()
	}
	frames := make(Frames, len(bones))
	if root == nil {
		log.Warn("no armature root, no bones resolved")
		return frames
	}
	for _, hb := range bones {
		obj := root.FindDeep(hb.BoneName)
		if obj == nil {
			log.Warn("bone transform not found", "human", hb.HumanName, "bone", hb.BoneName)
			continue
		}
		b, err := humanoid.Parse(hb.HumanName)
		if err != nil {
			log.Warn("unknown humanoid bone", "human", hb.HumanName, "err", err)
			continue
		}
		if _, dup := frames[b]; dup {
			log.Warn("humanoid bone mapped twice, keeping first", "human", b, "bone", hb.BoneName)
			continue
		}
		frames[b] = FrameOf(obj)
	}
	log.Debug("resolved bone frames", "resolved", len(frames), "mapped", len(bones))
	return frames
}
