package irffit

import "context"

// Objective is a function to minimize: given a parameter vector, return a
// scalar cost.
type Objective func(x []float64) float64

// ProgressFunc is invoked after each completed DE sweep with the 1-indexed
// iteration number and current best fitness.
type ProgressFunc func(iteration int, bestFitness float64)

// DEOptions configures a Differential Evolution run (SPEC_FULL.md §4.3).
type DEOptions struct {
	MaxIter int
	Pop     int
	F       float64
	CR      float64
	Tol     float64
	Seed    uint32

	OnProgress ProgressFunc
	Metrics    *Metrics

	// Ctx, when non-nil, is polled once per sweep for cooperative
	// cancellation (SPEC_FULL.md §5 expansion); a non-cancelled run visits
	// every iteration in the same order regardless of whether Ctx is set.
	Ctx context.Context
}

// DefaultDEOptions returns the contractual defaults from SPEC_FULL.md §4.3.
func DefaultDEOptions() DEOptions {
	return DEOptions{
		MaxIter: 100,
		Pop:     15,
		F:       0.8,
		CR:      0.7,
		Tol:     1e-8,
		Seed:    42,
	}
}

// DEResult is the outcome of a Differential Evolution run.
type DEResult struct {
	X          []float64
	Fitness    float64
	Iterations int
	Converged  bool
}

// DifferentialEvolution runs DE/rand/1/bin minimizing f over bounds,
// following SPEC_FULL.md §4.3 exactly: the Mulberry32 stream and iteration
// order are part of the cross-implementation determinism contract (§5, §8
// property 6), so this function must not reorder draws relative to the
// spec's algorithm description.
func DifferentialEvolution(f Objective, bounds OptimizationBounds, opts DEOptions) (DEResult, error) {
	if err := bounds.Validate(); err != nil {
		return DEResult{}, err
	}
	if opts.Pop < 4 {
		return DEResult{}, errNeedsPop4
	}
	dim := bounds.Dim()
	rng := newMulberry32(opts.Seed)

	pop := make([][]float64, opts.Pop)
	fitness := make([]float64, opts.Pop)
	for i := range pop {
		x := make([]float64, dim)
		for j := 0; j < dim; j++ {
			x[j] = bounds.Lower[j] + rng.next()*(bounds.Upper[j]-bounds.Lower[j])
		}
		pop[i] = x
		fitness[i] = f(x)
	}

	bestIdx := 0
	for i := 1; i < opts.Pop; i++ {
		if fitness[i] < fitness[bestIdx] {
			bestIdx = i
		}
	}
	best := append([]float64(nil), pop[bestIdx]...)
	bestFitness := fitness[bestIdx]

	iterations := 0
	converged := false

	for iter := 0; iter < opts.MaxIter; iter++ {
		prevBest := bestFitness

		for i := 0; i < opts.Pop; i++ {
			a, b, c := distinctTriple(rng, opts.Pop, i)

			donor := make([]float64, dim)
			for j := 0; j < dim; j++ {
				donor[j] = pop[a][j] + opts.F*(pop[b][j]-pop[c][j])
			}
			clampToBounds(donor, bounds)

			forcedJ := rng.intn(dim)
			trial := make([]float64, dim)
			for j := 0; j < dim; j++ {
				if j == forcedJ || rng.next() < opts.CR {
					trial[j] = donor[j]
				} else {
					trial[j] = pop[i][j]
				}
			}

			trialFitness := f(trial)
			if trialFitness < fitness[i] {
				pop[i] = trial
				fitness[i] = trialFitness
				if trialFitness < bestFitness {
					bestFitness = trialFitness
					best = append([]float64(nil), trial...)
				}
			}
		}

		iterations = iter + 1
		opts.Metrics.incDEIteration()
		if opts.OnProgress != nil {
			opts.OnProgress(iterations, bestFitness)
		}

		if absFloat(bestFitness-prevBest) < opts.Tol {
			converged = true
			break
		}
		if opts.Ctx != nil && opts.Ctx.Err() != nil {
			break
		}
	}

	return DEResult{X: best, Fitness: bestFitness, Iterations: iterations, Converged: converged}, nil
}

// distinctTriple draws three indices in [0,pop) distinct from each other
// and from exclude, using DE's standard rejection-sampling approach.
func distinctTriple(rng *mulberry32, pop, exclude int) (a, b, c int) {
	draw := func(avoid ...int) int {
		for {
			i := rng.intn(pop)
			ok := true
			for _, x := range avoid {
				if i == x {
					ok = false
					break
				}
			}
			if ok {
				return i
			}
		}
	}
	a = draw(exclude)
	b = draw(exclude, a)
	c = draw(exclude, a, b)
	return a, b, c
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
