package search

import (
	"runtime"
	"sync"
)

// evaluateAll fans a batch of candidates out across a bounded worker pool
// and joins before returning: selection never observes a half-evaluated
// round. Each task gets its own pre-derived seed (an independent random
// stream) and touches no shared state, so no locking is needed beyond the
// join barrier.
func evaluateAll(genomes []vectorSeed, fn FitnessFunc, workers int) []float64 {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(genomes) {
		workers = len(genomes)
	}

	fitness := make([]float64, len(genomes))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fitness[i] = fn(genomes[i].vec, genomes[i].seed)
			}
		}()
	}
	for i := range genomes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return fitness
}
