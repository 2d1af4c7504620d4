// Package gbtype holds the small set of type constraints shared across the
// histogram, split, tree, and boost packages, so that gradient/hessian
// arithmetic can be written generically over float32/float64 instead of
// being duplicated per precision.
package gbtype

// Numeric is the gradient/hessian element type constraint. Production call
// sites and tests instantiate float64; the constraint also admits float32,
// which no code in this module instantiates.
type Numeric interface {
	~float32 | ~float64
}
