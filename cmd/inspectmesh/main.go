package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"haptics-installer/internal/asset"
	"haptics-installer/internal/mathutil"
	"haptics-installer/internal/surface"
)

func main() {
	parts := flag.Bool("parts", false, "Print per-part vertex counts")
	rays := flag.Bool("rays", false, "Cast rays from the bounds center along the six axes")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: inspectmesh [-parts] [-rays] <file.obj>...")
		os.Exit(2)
	}

	failed := false
	for _, arg := range flag.Args() {
		m, err := asset.LoadOBJ(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			failed = true
			continue
		}
		b := m.Bounds
		fmt.Printf("\n=== %s (%s) ===\n", arg, m.Name)
		fmt.Printf("  vertices=%d triangles=%d parts=%d\n", len(m.Vertices), m.TriangleCount(), len(m.Parts))
		fmt.Printf("  bounds x=[%.4f..%.4f] y=[%.4f..%.4f] z=[%.4f..%.4f]\n",
			b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z)

		if *parts {
			for i := range m.Parts {
				fmt.Printf("  Part[%d] start=%d indices=%d vertices=%d\n",
					i, m.Parts[i].Start, m.Parts[i].Count, len(m.PartVertices(i)))
			}
		}

		if *rays {
			c := surface.NewCollider(m, mgl64.Ident4())
			center := mathutil.BoxCenter(b)
			for _, dir := range []mathutil.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
				hit, ok := c.Raycast(center, dir, 0)
				if !ok {
					fmt.Printf("  ray %v: miss\n", dir)
					continue
				}
				fmt.Printf("  ray %v: dist=%.4f tri=%d backface=%v\n", dir, hit.Distance, hit.Triangle, hit.BackFace)
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}
