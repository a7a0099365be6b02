package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tol                    float64
	}{
		{"same point", 12.9757, 77.6050, 12.9757, 77.6050, 0, 0.001},
		{"bengaluru to mysuru", 12.9716, 77.5946, 12.2958, 76.6394, 127, 5},
		{"bengaluru to delhi", 12.9716, 77.5946, 28.6139, 77.2090, 1740, 20},
		{"equator antipodes", 0, 0, 0, 180, math.Pi * EarthRadiusKm, 1},
		{"one degree latitude", 0, 0, 1, 0, 111.2, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceKm(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
			if math.IsNaN(got) {
				t.Fatal("distance is NaN")
			}
			if math.Abs(got-tc.want) > tc.tol {
				t.Fatalf("distance = %.2f, want %.2f ± %.2f", got, tc.want, tc.tol)
			}
		})
	}
}

func TestDistanceKmNeverNaNNearDomainEdges(t *testing.T) {
	// Nearly identical and nearly antipodal points push the acos argument
	// right at the domain boundary.
	pairs := [][4]float64{
		{45, 45, 45, 45.0000000001},
		{45, 45, -45, -134.9999999999},
		{90, 0, -90, 0},
	}
	for _, p := range pairs {
		if d := DistanceKm(p[0], p[1], p[2], p[3]); math.IsNaN(d) {
			t.Fatalf("DistanceKm(%v) = NaN", p)
		}
	}
}
