package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	store := Point{Lat: 34.6819, Lon: -1.9116}

	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{name: "same point", a: store, b: store, want: 0},
		{name: "one degree of latitude", a: Point{0, 0}, b: Point{1, 0}, want: 111.2},
		{name: "one degree of longitude on the equator", a: Point{0, 0}, b: Point{0, 1}, want: 111.2},
		{name: "quarter of the equator", a: Point{0, 0}, b: Point{0, 90}, want: 10007.5},
		{name: "pole to equator", a: Point{90, 0}, b: Point{0, 0}, want: 10007.5},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, RoundKm(Distance(tc.a, tc.b)))
			require.Equal(t, tc.want, RoundKm(Distance(tc.b, tc.a)), "distance must be symmetric")
		})
	}
}

func TestRoundKm(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2.4, RoundKm(2.449))
	require.Equal(t, 2.5, RoundKm(2.45))
	require.Equal(t, 0.0, RoundKm(0.04))
}

func TestPointValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Point{Lat: 34.68, Lon: -1.91}.Validate())
	require.Error(t, Point{Lat: 91, Lon: 0}.Validate())
	require.Error(t, Point{Lat: 0, Lon: -181}.Validate())
}
