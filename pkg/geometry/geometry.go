// Package geometry provides the planar primitives used by the renderer:
// points, polygon rings, and the signed-area (shoelace) formulas for area
// and centroid. Coordinates are in data units on the unit disk.
package geometry

import "math"

// Point is a 2D point in data units.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance from the origin.
func (p Point) Distance() float64 {
	return math.Hypot(p.X, p.Y)
}

// Scale returns the point scaled toward the origin by factor f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Ring is an ordered sequence of vertices forming a polygon boundary.
// The ring may be open (first vertex not repeated); area and centroid
// treat it as implicitly closed.
type Ring []Point

// SignedArea returns the signed area of the ring via the shoelace formula.
// Positive for counter-clockwise winding, negative for clockwise.
func (r Ring) SignedArea() float64 {
	if len(r) < 3 {
		return 0
	}
	var sum float64
	for i, p := range r {
		q := r[(i+1)%len(r)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Area returns the absolute area of the ring.
func (r Ring) Area() float64 {
	return math.Abs(r.SignedArea())
}

// Centroid returns the area-weighted geometric center of the ring.
// For degenerate rings (fewer than 3 vertices or zero area) it falls back
// to the vertex mean, which keeps labels on collapsed cells finite.
func (r Ring) Centroid() Point {
	a := r.SignedArea()
	if len(r) < 3 || a == 0 {
		return r.vertexMean()
	}
	var cx, cy float64
	for i, p := range r {
		q := r[(i+1)%len(r)]
		cross := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// vertexMean returns the arithmetic mean of the vertices.
func (r Ring) vertexMean() Point {
	if len(r) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range r {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(r))
	return Point{X: sx / n, Y: sy / n}
}

// RegularPolygon returns a ring with the given number of sides inscribed in
// a circle of the given radius, centered at the origin. It approximates the
// circular clip boundary handed to the tessellator; 360 sides is the
// default silhouette.
func RegularPolygon(radius float64, sides int) Ring {
	ring := make(Ring, 0, sides)
	step := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		angle := float64(i) * step
		ring = append(ring, Point{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		})
	}
	return ring
}
