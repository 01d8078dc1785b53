package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

const intersectionEpsilon = 1e-12

// PolarToPoint returns the point at range r along bearing theta.
func PolarToPoint(r, theta float64) r3.Vector {
	return r3.Vector{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// Bearing returns atan2(p.Y, p.X).
func Bearing(p r3.Vector) float64 {
	return math.Atan2(p.Y, p.X)
}

// Distance is the planar Euclidean distance between a and b.
func Distance(a, b r3.Vector) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Rotate rotates p counter-clockwise by theta about the origin.
func Rotate(p r3.Vector, theta float64) r3.Vector {
	sin, cos := math.Sincos(theta)
	return r3.Vector{X: cos*p.X - sin*p.Y, Y: sin*p.X + cos*p.Y}
}

// ToFrame expresses p in a frame whose origin is at origin and whose X axis points along theta.
func ToFrame(origin r3.Vector, theta float64, p r3.Vector) r3.Vector {
	return Rotate(p.Sub(origin), -theta)
}

// ClosestPointSegmentPoint takes a line segment and a point, and returns the point on the
// segment which is closest to the given point.
func ClosestPointSegmentPoint(segA, segB, pt r3.Vector) r3.Vector {
	seg := segB.Sub(segA)
	lenSq := seg.Dot(seg)
	if lenSq < intersectionEpsilon {
		return segA
	}
	t := math.Max(0, math.Min(1, pt.Sub(segA).Dot(seg)/lenSq))
	return segA.Add(seg.Mul(t))
}

// LineSegmentIntersection intersects the infinite line through linePt with direction lineDir
// against the closed segment [segA, segB]. The second return is false when they do not meet or
// are parallel.
func LineSegmentIntersection(linePt, lineDir, segA, segB r3.Vector) (r3.Vector, bool) {
	seg := segB.Sub(segA)
	denom := cross2(lineDir, seg)
	if math.Abs(denom) < intersectionEpsilon {
		return r3.Vector{}, false
	}
	// Parameter along the segment.
	u := cross2(lineDir, linePt.Sub(segA)) / denom
	if u < -intersectionEpsilon || u > 1+intersectionEpsilon {
		return r3.Vector{}, false
	}
	return segA.Add(seg.Mul(u)), true
}

// SegmentCircleIntersections returns every point where the closed segment [segA, segB] meets
// the circle of the given center and radius. Tangent contact yields a single point.
func SegmentCircleIntersections(segA, segB, center r3.Vector, radius float64) []r3.Vector {
	d := segB.Sub(segA)
	f := segA.Sub(center)
	a := d.X*d.X + d.Y*d.Y
	if a < intersectionEpsilon {
		if math.Abs(Distance(segA, center)-radius) < 1e-9 {
			return []r3.Vector{segA}
		}
		return nil
	}
	b := 2 * (f.X*d.X + f.Y*d.Y)
	c := f.X*f.X + f.Y*f.Y - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	var pts []r3.Vector
	for i, t := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if i == 1 && sq == 0 {
			break
		}
		if t < -intersectionEpsilon || t > 1+intersectionEpsilon {
			continue
		}
		pts = append(pts, segA.Add(d.Mul(t)))
	}
	return pts
}

func cross2(a, b r3.Vector) float64 {
	return a.X*b.Y - a.Y*b.X
}
