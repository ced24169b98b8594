package tydra

import (
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinymath"
)

// triangulationResult is the output of triangulateFaces (§4.8 step 4).
type triangulationResult struct {
	faceVertexCounts  []int32
	faceVertexIndices []int32
	faceCounts        []int // triangles produced per original face
	origFaceOfTri     []int // original face index per output triangle

	// origSlot[k] is the position of output facevertex k within the
	// *original* flat faceVertexIndices array, letting a facevarying
	// primvar be remapped by a single gather: newFV[k] = oldFV[origSlot[k]].
	origSlot []int32
}

// triangulateFaces converts a faceVertexCounts/faceVertexIndices mesh
// description into an all-triangle one:
//   - a 3-vertex face passes through unchanged.
//   - a 4-vertex face splits along the 0-2 diagonal.
//   - a larger polygon is triangulated by projecting to 2D along its
//     Newell-method normal and ear-clipping.
func triangulateFaces(points []tinymath.Vec3f, faceVertexCounts, faceVertexIndices []int32) (triangulationResult, error) {
	var out triangulationResult
	idx := 0
	for faceIdx, count := range faceVertexCounts {
		n := int(count)
		if n < 3 {
			return triangulationResult{}, fmt.Errorf("%w: face %d has %d vertices, need >= 3", tinyerr.ErrSubsetValidationFailed, faceIdx, n)
		}
		if idx+n > len(faceVertexIndices) {
			return triangulationResult{}, fmt.Errorf("%w: faceVertexIndices too short for faceVertexCounts", tinyerr.ErrTriangulationFailed)
		}
		face := faceVertexIndices[idx : idx+n]
		base := int32(idx)
		idx += n

		switch n {
		case 3:
			out.faceVertexCounts = append(out.faceVertexCounts, 3)
			out.faceVertexIndices = append(out.faceVertexIndices, face...)
			out.origSlot = append(out.origSlot, base, base+1, base+2)
			out.faceCounts = append(out.faceCounts, 1)
			out.origFaceOfTri = append(out.origFaceOfTri, faceIdx)
		case 4:
			out.faceVertexCounts = append(out.faceVertexCounts, 3, 3)
			out.faceVertexIndices = append(out.faceVertexIndices,
				face[0], face[1], face[2],
				face[0], face[2], face[3],
			)
			out.origSlot = append(out.origSlot, base, base+1, base+2, base, base+2, base+3)
			out.faceCounts = append(out.faceCounts, 2)
			out.origFaceOfTri = append(out.origFaceOfTri, faceIdx, faceIdx)
		default:
			tris, slots, err := earClipPolygon(points, face, base)
			if err != nil {
				return triangulationResult{}, fmt.Errorf("%w: face %d: %v", tinyerr.ErrTriangulationFailed, faceIdx, err)
			}
			for i := 0; i < len(tris); i += 3 {
				out.faceVertexCounts = append(out.faceVertexCounts, 3)
				out.faceVertexIndices = append(out.faceVertexIndices, tris[i], tris[i+1], tris[i+2])
				out.origSlot = append(out.origSlot, slots[i], slots[i+1], slots[i+2])
				out.origFaceOfTri = append(out.origFaceOfTri, faceIdx)
			}
			out.faceCounts = append(out.faceCounts, len(tris)/3)
		}
	}
	return out, nil
}

// newellNormal computes a polygon's Newell-method normal: stable for
// near-planar, possibly non-convex polygons where a naive 3-point cross
// product would be sensitive to which vertex triple is sampled.
func newellNormal(points []tinymath.Vec3f, face []int32) tinymath.Vec3d {
	var n tinymath.Vec3d
	for i := range face {
		j := (i + 1) % len(face)
		pi := points[face[i]].ToVec3d()
		pj := points[face[j]].ToVec3d()
		n[0] += (pi[1] - pj[1]) * (pi[2] + pj[2])
		n[1] += (pi[2] - pj[2]) * (pi[0] + pj[0])
		n[2] += (pi[0] - pj[0]) * (pi[1] + pj[1])
	}
	return n
}

// project2D drops the normal's dominant axis, projecting the polygon
// into the plane of the remaining two coordinates. This is the usual
// "project along the normal basis" shortcut: it can mirror the
// polygon's winding relative to the true 3D face; earClipPolygon
// detects that from the signed area and undoes it before ear selection.
func project2D(p tinymath.Vec3d, dominant int) (float64, float64) {
	switch dominant {
	case 0:
		return p[1], p[2]
	case 1:
		return p[0], p[2]
	default:
		return p[0], p[1]
	}
}

func dominantAxis(n tinymath.Vec3d) int {
	ax, ay, az := abs(n[0]), abs(n[1]), abs(n[2])
	if ax >= ay && ax >= az {
		return 0
	}
	if ay >= ax && ay >= az {
		return 1
	}
	return 2
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// earClipPolygon triangulates a simple (possibly non-convex, planar)
// polygon given as a list of indices into points, via repeated ear
// removal in the normal's dominant 2D projection — the same strategy
// libmapbox/earcut uses (2D projection + ear selection), implemented
// directly since no earcut-equivalent package exists in the example
// pack's dependency surface.
func earClipPolygon(points []tinymath.Vec3f, face []int32, baseSlot int32) (tris, slots []int32, err error) {
	n := len(face)
	normal := newellNormal(points, face)
	axis := dominantAxis(normal)

	poly := make([]point2, n)
	for i, idx := range face {
		x, y := project2D(points[idx].ToVec3d(), axis)
		poly[i] = point2{x, y, idx, baseSlot + int32(i)}
	}
	// isConvex expects counter-clockwise winding; mirror x if the
	// projection came out clockwise.
	var area float64
	for i := range poly {
		j := (i + 1) % n
		area += cross2(poly[i].x, poly[i].y, poly[j].x, poly[j].y)
	}
	if area < 0 {
		for i := range poly {
			poly[i].x = -poly[i].x
		}
	}

	remaining := make([]point2, len(poly))
	copy(remaining, poly)

	guard := 0
	for len(remaining) > 3 {
		guard++
		if guard > n*n+16 {
			return nil, nil, fmt.Errorf("ear clipping did not converge (degenerate or self-intersecting polygon)")
		}
		earFound := false
		m := len(remaining)
		for i := 0; i < m; i++ {
			a := remaining[(i-1+m)%m]
			b := remaining[i]
			c := remaining[(i+1)%m]
			if !isConvex(a, b, c) {
				continue
			}
			isEar := true
			for j := 0; j < m; j++ {
				if j == (i-1+m)%m || j == i || j == (i+1)%m {
					continue
				}
				if pointInTriangle(remaining[j], a, b, c) {
					isEar = false
					break
				}
			}
			if !isEar {
				continue
			}
			tris = append(tris, a.index, b.index, c.index)
			slots = append(slots, a.slot, b.slot, c.slot)
			remaining = append(remaining[:i], remaining[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			// Fall back to a fan from the first vertex rather than
			// failing outright on a near-degenerate polygon.
			break
		}
	}
	for i := 1; i+1 < len(remaining); i++ {
		tris = append(tris, remaining[0].index, remaining[i].index, remaining[i+1].index)
		slots = append(slots, remaining[0].slot, remaining[i].slot, remaining[i+1].slot)
	}
	return tris, slots, nil
}

type point2 struct {
	x, y   float64
	index  int32
	slot   int32
}

func cross2(ax, ay, bx, by float64) float64 { return ax*by - ay*bx }

func isConvex(a, b, c point2) bool {
	return cross2(b.x-a.x, b.y-a.y, c.x-b.x, c.y-b.y) > 0
}

func pointInTriangle(p, a, b, c point2) bool {
	d1 := cross2(b.x-a.x, b.y-a.y, p.x-a.x, p.y-a.y)
	d2 := cross2(c.x-b.x, c.y-b.y, p.x-b.x, p.y-b.y)
	d3 := cross2(a.x-c.x, a.y-c.y, p.x-c.x, p.y-c.y)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
