package geom

import "math"

const (
	pressureChangeRate = 0.275
	minStrokeRadius    = 0.01
	defaultCapSegments = 8
)

// StrokeOptions controls how OutlineStroke widens a pencil stroke.
type StrokeOptions struct {
	// Size is the stroke diameter at pressure 0.5.
	Size float64
	// Thinning is how much pressure affects the width, in [0, 1].
	Thinning float64
	// Streamline pulls each sample toward the previous one, in [0, 1].
	Streamline float64
	// SimulatePressure derives pressure from pointer speed instead of the samples.
	SimulatePressure bool
	// CapSegments is the number of segments per round end cap.
	CapSegments int
}

// DefaultStrokeOptions matches the pencil tool.
func DefaultStrokeOptions(size float64) StrokeOptions {
	return StrokeOptions{
		Size:             size,
		Thinning:         0.5,
		Streamline:       0.5,
		SimulatePressure: true,
		CapSegments:      defaultCapSegments,
	}
}

// OutlineStroke expands a centerline of pressure samples into the closed
// polygon of its painted area: the left edge forward, a round end cap, the
// right edge backward and a round start cap.
func OutlineStroke(points []StrokePoint, opts StrokeOptions) []Point {
	if len(points) == 0 {
		return nil
	}
	if opts.Size <= 0 {
		opts.Size = 8
	}
	if opts.CapSegments <= 1 {
		opts.CapSegments = defaultCapSegments
	}

	centers, pressures := streamline(points, opts)
	radii := make([]float64, len(centers))
	for i, p := range pressures {
		radii[i] = max(opts.Size*(0.5-opts.Thinning*(0.5-p)), minStrokeRadius)
	}

	if len(centers) == 1 {
		return circle(centers[0], radii[0], opts.CapSegments*2)
	}

	n := len(centers)
	dirs := make([]Point, n)
	last := Point{X: 1}
	for i := range centers {
		d := centers[min(i+1, n-1)].Sub(centers[max(i-1, 0)])
		if l := d.Len(); l > 0 {
			last = d.Mul(1 / l)
		}
		dirs[i] = last
	}

	left := make([]Point, n)
	right := make([]Point, n)
	for i, c := range centers {
		normal := Point{X: -dirs[i].Y, Y: dirs[i].X}
		left[i] = c.Add(normal.Mul(radii[i]))
		right[i] = c.Sub(normal.Mul(radii[i]))
	}

	polygon := make([]Point, 0, 2*n+2*opts.CapSegments)
	polygon = append(polygon, left...)
	polygon = append(polygon, roundCap(centers[n-1], dirs[n-1], radii[n-1], opts.CapSegments)...)
	for i := n - 1; i >= 0; i-- {
		polygon = append(polygon, right[i])
	}
	polygon = append(polygon, roundCap(centers[0], dirs[0].Mul(-1), radii[0], opts.CapSegments)...)

	return polygon
}

// streamline smooths the samples and resolves the pressure of each kept one.
// Samples that land on the previous kept sample are dropped.
func streamline(points []StrokePoint, opts StrokeOptions) ([]Point, []float64) {
	t := 0.15 + (1-clamp(opts.Streamline, 0, 1))*0.85

	centers := []Point{points[0].Point()}
	pressures := []float64{samplePressure(points[0], opts)}

	for _, sp := range points[1:] {
		prev := centers[len(centers)-1]
		p := prev.Lerp(sp.Point(), t)
		dist := Distance(p, prev)
		if dist == 0 {
			continue
		}

		pressure := samplePressure(sp, opts)
		if opts.SimulatePressure {
			prevPressure := pressures[len(pressures)-1]
			speed := min(1, dist/opts.Size)
			target := min(1, 1-speed)
			pressure = min(1, prevPressure+(target-prevPressure)*(speed*pressureChangeRate))
		}

		centers = append(centers, p)
		pressures = append(pressures, pressure)
	}

	return centers, pressures
}

func samplePressure(p StrokePoint, opts StrokeOptions) float64 {
	if opts.SimulatePressure || p.Pressure() <= 0 {
		return 0.5
	}
	return clamp(p.Pressure(), 0, 1)
}

// roundCap returns the interior points of a half circle around c, sweeping from
// the left normal through dir to the right normal.
func roundCap(c, dir Point, r float64, segments int) []Point {
	normal := Point{X: -dir.Y, Y: dir.X}
	out := make([]Point, 0, segments-1)
	for k := 1; k < segments; k++ {
		theta := math.Pi * float64(k) / float64(segments)
		v := normal.Mul(math.Cos(theta)).Add(dir.Mul(math.Sin(theta)))
		out = append(out, c.Add(v.Mul(r)))
	}
	return out
}

func circle(c Point, r float64, segments int) []Point {
	out := make([]Point, segments)
	for k := range out {
		theta := 2 * math.Pi * float64(k) / float64(segments)
		out[k] = Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
