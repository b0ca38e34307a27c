package option

// MaxInValues bounds the values bound into one IN list. SQLite caps a
// statement at 32766 parameters and Postgres at 65535.
const MaxInValues = 1000

// Chunks splits values into consecutive slices of at most size elements.
func Chunks[V any](values []V, size int) [][]V {
	if size <= 0 {
		size = MaxInValues
	}
	out := make([][]V, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		out = append(out, values[start:end])
	}
	return out
}
