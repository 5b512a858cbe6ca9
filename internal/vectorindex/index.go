// Package vectorindex stores fixed-dimension vectors under integer ids and
// answers nearest-neighbor queries by squared Euclidean distance.
package vectorindex

// Hit is one search result.
type Hit struct {
	ID       int64
	Distance float32
}

// Index is the contract callers depend on. FlatL2 is the exact implementation;
// an approximate one can replace it without changing callers.
type Index interface {
	Dimension() int
	Len() int
	Add(id int64, vector []float32) error
	Search(query []float32, k int) ([]Hit, error)
	// IDs returns ids in insertion order.
	IDs() []int64
	Vector(id int64) ([]float32, bool)
}

// SquaredL2 returns the squared Euclidean distance between a and b.
// Both must have the same length.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
