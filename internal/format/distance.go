package format

// FormatKm renders a distance in kilometres with one French decimal,
// e.g. "4,4 km".
func FormatKm(km float64) string {
	return printer.Sprintf("%.1f km", km)
}
