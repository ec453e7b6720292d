package som

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/viterin/vek"
)

// Mode defines how the samples of one iteration update the network.
type Mode string

const (
	// Online updates the network after every sample, in sample order.
	Online Mode = "online"
	// Batch finds the best matching units of all samples against the network as it was
	// at the start of the iteration and applies the accumulated updates after the sweep.
	Batch Mode = "batch"
)

// Iteration describes a completed training iteration.
type Iteration struct {
	Index int
	Count int
	Rate  float64
	// Radius is the neighbourhood radius used during the iteration.
	Radius float64
}

// Progress is notified once per completed iteration.
type Progress func(iteration Iteration)

// TrainOptions carries the optional training parameters.
type TrainOptions struct {
	Mode Mode
	// Workers is the number of goroutines searching best matching units in batch mode.
	// Zero means one per CPU.
	Workers int
	// Init is used when the network has not been initialized yet.
	Init Initializer
}

// Train runs the given number of iterations over the normalized samples.
// All inputs are validated before the network is touched.
// Training a trained network continues from its current state.
func (n *Network) Train(samples []Vector, iterations int, schedule Schedule, progress Progress) error {
	return n.TrainWith(samples, iterations, schedule, progress, TrainOptions{Mode: Online})
}

// TrainWith is Train with explicit options.
func (n *Network) TrainWith(samples []Vector, iterations int, schedule Schedule, progress Progress, opts TrainOptions) error {
	if len(samples) == 0 {
		return fmt.Errorf("cannot train network: %w", ErrEmptyCorpus)
	}
	if iterations < 1 {
		return fmt.Errorf("invalid iteration count %d: %w", iterations, ErrConfiguration)
	}
	for i, s := range samples {
		if err := CheckVector(s, n.dim); err != nil {
			return fmt.Errorf("invalid sample at %d: %w", i, err)
		}
	}
	if err := schedule.Validate(); err != nil {
		return err
	}
	var sweep func(samples []Vector, rate, radius float64)
	switch opts.Mode {
	case Online, "":
		sweep = n.onlineSweep
	case Batch:
		workers := opts.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		sweep = func(samples []Vector, rate, radius float64) {
			n.batchSweep(samples, rate, radius, workers)
		}
	default:
		return fmt.Errorf("unknown training mode '%s': %w", opts.Mode, ErrConfiguration)
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.state == Uninitialized {
		init := opts.Init
		if init == nil {
			init = RandomInit(0)
		}
		if err := n.initialize(init, samples); err != nil {
			return err
		}
	}

	for t := 0; t < iterations; t++ {
		rate, radius := schedule.At(t, iterations)
		sweep(samples, rate, radius)
		log.Debug().
			Int("iteration", t+1).
			Int("of", iterations).
			Float64("rate", rate).
			Float64("radius", radius).
			Msg("training iteration")
		if progress != nil {
			progress(Iteration{
				Index:  t,
				Count:  iterations,
				Rate:   rate,
				Radius: radius,
			})
		}
	}
	n.state = Trained
	return nil
}

// onlineSweep moves every cell towards each sample in turn.
func (n *Network) onlineSweep(samples []Vector, rate, radius float64) {
	buf := n.newScratch()
	for _, s := range samples {
		b := n.bmu(s, buf)
		for i := 0; i < n.refs.Len(); i++ {
			h := neighbourhood(gridDistanceSquared(n.refs.Position(i), b), radius)
			if h == 0 {
				continue
			}
			ref := n.refs.cells[i]
			// ref += rate * h * (s - ref)
			vek.Sub_Into(buf.diff, s, ref)
			vek.MulNumber_Inplace(buf.diff, rate*h)
			vek.Add_Inplace(ref, buf.diff)
		}
	}
}

// batchSweep searches the best matching units concurrently against the frozen network
// and then applies the normalized accumulated deltas per cell.
// The accumulation happens in sample order, so the result does not depend on the worker count.
func (n *Network) batchSweep(samples []Vector, rate, radius float64, workers int) {
	bmus := make([]Position, len(samples))

	if workers > len(samples) {
		workers = len(samples)
	}
	chunk := (len(samples) + workers - 1) / workers
	wg := new(sync.WaitGroup)
	for w := 0; w < workers; w++ {
		from := w * chunk
		to := from + chunk
		if to > len(samples) {
			to = len(samples)
		}
		if from >= to {
			break
		}
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			buf := n.newScratch()
			for i := from; i < to; i++ {
				bmus[i] = n.bmu(samples[i], buf)
			}
		}(from, to)
	}
	wg.Wait()

	deltas := make([][]float64, n.refs.Len())
	influence := make([]float64, n.refs.Len())
	buf := make([]float64, n.dim)
	for s, sample := range samples {
		for i := 0; i < n.refs.Len(); i++ {
			h := neighbourhood(gridDistanceSquared(n.refs.Position(i), bmus[s]), radius)
			if h == 0 {
				continue
			}
			if deltas[i] == nil {
				deltas[i] = make([]float64, n.dim)
			}
			vek.Sub_Into(buf, sample, n.refs.cells[i])
			vek.MulNumber_Inplace(buf, h)
			vek.Add_Inplace(deltas[i], buf)
			influence[i] += h
		}
	}

	for i, delta := range deltas {
		if delta == nil || influence[i] == 0 {
			continue
		}
		// ref += rate * sum(h * (s - ref)) / sum(h)
		vek.MulNumber_Inplace(delta, rate/influence[i])
		vek.Add_Inplace(n.refs.cells[i], delta)
	}
}
