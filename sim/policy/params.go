// Package policy converts compact tunable parameter vectors into the
// day-indexed strategies the simulator consumes. Optimizing thousands of
// daily decisions directly is infeasible; optimizing the ~15 coefficients
// that generate those decisions is not.
package policy

import (
	"fmt"
	"math/rand"
)

// Gene indexes one tunable coefficient in a Vector. The enum-indexed layout
// (instead of string-keyed parameter maps) makes bucket variants exhaustive
// at compile time.
type Gene int

const (
	GeneReorderPoint Gene = iota
	GeneOrderQuantity
	GeneBatchSize
	GeneAllocation
	GeneStandardPrice
	GeneOvertimeHours
	GeneTargetExperts
	GeneCashFloor
	GeneLoanAmount
	GenePaydownLevel
	GenePaydownFraction
	GeneTargetMachines
	GeneAllocationStep
	GeneSafetyStockDays
	GeneHireBatch
	NumGenes
)

// String names the gene for logs and persisted records.
func (g Gene) String() string {
	switch g {
	case GeneReorderPoint:
		return "reorder_point"
	case GeneOrderQuantity:
		return "order_quantity"
	case GeneBatchSize:
		return "batch_size"
	case GeneAllocation:
		return "allocation"
	case GeneStandardPrice:
		return "standard_price"
	case GeneOvertimeHours:
		return "overtime_hours"
	case GeneTargetExperts:
		return "target_experts"
	case GeneCashFloor:
		return "cash_floor"
	case GeneLoanAmount:
		return "loan_amount"
	case GenePaydownLevel:
		return "paydown_level"
	case GenePaydownFraction:
		return "paydown_fraction"
	case GeneTargetMachines:
		return "target_machines"
	case GeneAllocationStep:
		return "allocation_step"
	case GeneSafetyStockDays:
		return "safety_stock_days"
	case GeneHireBatch:
		return "hire_batch"
	default:
		return fmt.Sprintf("gene_%d", int(g))
	}
}

// Vector is one complete parameter assignment: the genome the search
// strategies mutate.
type Vector [NumGenes]float64

// Bounds declares one gene's feasible interval. Every mutation and crossover
// result is clamped back into bounds before evaluation.
type Bounds struct {
	Min float64
	Max float64
}

// GeneBounds is the declared feasible region of the search space.
var GeneBounds = [NumGenes]Bounds{
	GeneReorderPoint:    {0, 1000},
	GeneOrderQuantity:   {50, 2000},
	GeneBatchSize:       {10, 200},
	GeneAllocation:      {0.1, 0.9},
	GeneStandardPrice:   {50, 300},
	GeneOvertimeHours:   {0, 4},
	GeneTargetExperts:   {1, 20},
	GeneCashFloor:       {0, 50000},
	GeneLoanAmount:      {5000, 100000},
	GenePaydownLevel:    {10000, 200000},
	GenePaydownFraction: {0, 1},
	GeneTargetMachines:  {1, 10},
	GeneAllocationStep:  {0, 0.05},
	GeneSafetyStockDays: {0, 10},
	GeneHireBatch:       {0, 5},
}

// Clamp forces every gene into its declared bounds, in place.
func (v *Vector) Clamp() {
	for g := Gene(0); g < NumGenes; g++ {
		b := GeneBounds[g]
		if v[g] < b.Min {
			v[g] = b.Min
		}
		if v[g] > b.Max {
			v[g] = b.Max
		}
	}
}

// Slice copies the vector into a fresh []float64, for persistence and for
// search code that treats genomes generically.
func (v Vector) Slice() []float64 {
	out := make([]float64, NumGenes)
	copy(out, v[:])
	return out
}

// FromSlice rebuilds a Vector from a persisted []float64.
func FromSlice(vals []float64) (Vector, error) {
	var v Vector
	if len(vals) != int(NumGenes) {
		return v, fmt.Errorf("policy: expected %d genes, got %d", NumGenes, len(vals))
	}
	copy(v[:], vals)
	return v, nil
}

// RandomVector samples every gene uniformly within bounds.
func RandomVector(rng *rand.Rand) Vector {
	var v Vector
	for g := Gene(0); g < NumGenes; g++ {
		b := GeneBounds[g]
		v[g] = b.Min + rng.Float64()*(b.Max-b.Min)
	}
	return v
}

// DefaultVector is the conservative baseline assignment, mirroring the
// simulator's default strategy.
func DefaultVector() Vector {
	var v Vector
	v[GeneReorderPoint] = 200
	v[GeneOrderQuantity] = 500
	v[GeneBatchSize] = 60
	v[GeneAllocation] = 0.5
	v[GeneStandardPrice] = 100
	v[GeneOvertimeHours] = 0
	v[GeneTargetExperts] = 5
	v[GeneCashFloor] = 10000
	v[GeneLoanAmount] = 20000
	v[GenePaydownLevel] = 80000
	v[GenePaydownFraction] = 0.5
	v[GeneTargetMachines] = 2
	v[GeneAllocationStep] = 0.02
	v[GeneSafetyStockDays] = 3
	v[GeneHireBatch] = 1
	return v
}

// CashBucket classifies the running business state so the engine can select
// the parameter variant for the conditions it is operating under.
type CashBucket int

const (
	BucketLowCash CashBucket = iota
	BucketMediumCash
	BucketHighCash
	NumBuckets
)

// String names the bucket for logs and error messages.
func (b CashBucket) String() string {
	switch b {
	case BucketLowCash:
		return "low-cash"
	case BucketMediumCash:
		return "medium-cash"
	case BucketHighCash:
		return "high-cash"
	default:
		return fmt.Sprintf("bucket_%d", int(b))
	}
}

// BucketSet is the enum-indexed variant table: one Vector per business-state
// bucket. A nil entry is a fatal configuration error at expansion time;
// continuing would silently use undefined behavior.
type BucketSet [NumBuckets]*Vector

// Validate confirms every required bucket has a variant.
func (bs *BucketSet) Validate() error {
	for b := CashBucket(0); b < NumBuckets; b++ {
		if bs[b] == nil {
			return fmt.Errorf("policy: missing parameter variant for bucket %s", b)
		}
	}
	return nil
}

// Uniform builds a BucketSet that uses the same vector for every bucket.
func Uniform(v Vector) *BucketSet {
	var bs BucketSet
	for b := CashBucket(0); b < NumBuckets; b++ {
		vc := v
		bs[b] = &vc
	}
	return &bs
}
