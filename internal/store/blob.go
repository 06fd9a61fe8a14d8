package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"haptics-installer/internal/mathutil"
)

// Vertex buffers are stored as little-endian float64 triples, index
// buffers as little-endian uint32.

func encodeVertices(vs []mathutil.Vec3) []byte {
	buf := make([]byte, 0, len(vs)*24)
	for _, v := range vs {
		for _, c := range v {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
		}
	}
	return buf
}

func decodeVertices(b []byte) ([]mathutil.Vec3, error) {
	if len(b)%24 != 0 {
		return nil, fmt.Errorf("vertex blob of %d bytes", len(b))
	}
	out := make([]mathutil.Vec3, len(b)/24)
	for i := range out {
		for j := 0; j < 3; j++ {
			off := i*24 + j*8
			out[i][j] = math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
		}
	}
	return out, nil
}

func encodeIndices(idx []int) []byte {
	buf := make([]byte, 0, len(idx)*4)
	for _, i := range idx {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(i))
	}
	return buf
}

func decodeIndices(b []byte) ([]int, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("index blob of %d bytes", len(b))
	}
	out := make([]int, len(b)/4)
	for i := range out {
		out[i] = int(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}
