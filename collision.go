package main

import "math"

// containsEpsilon is the area tolerance of the point-in-quad test
const containsEpsilon = 1.0

// segmentIntersection solves p1+t(p2-p1) = p3+u(p4-p3). Parallel and
// collinear segments (zero determinant) never intersect.
func segmentIntersection(x1, y1, x2, y2, x3, y3, x4, y4 float64) (t, u float64, ok bool) {
	den := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if den == 0 {
		return 0, 0, false
	}
	t = ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / den
	u = -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / den
	return t, u, t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// SegmentsIntersect reports whether segments ab and cd cross
func SegmentsIntersect(a, b, c, d Position) bool {
	_, _, ok := segmentIntersection(a.X, a.Y, b.X, b.Y, c.X, c.Y, d.X, d.Y)
	return ok
}

func triangleArea(a, b, c Position) float64 {
	return math.Abs((a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y)) / 2)
}

// polygonArea is the shoelace formula
func polygonArea(pts []Position) float64 {
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// pointInPolygon tests a convex polygon: p is inside when the triangles it
// forms with each edge add up to the polygon's area.
func pointInPolygon(pts []Position, p Position) bool {
	sum := 0.0
	for i := range pts {
		sum += triangleArea(p, pts[i], pts[(i+1)%len(pts)])
	}
	return math.Abs(sum-polygonArea(pts)) < containsEpsilon
}
