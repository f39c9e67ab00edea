package grid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum board side length to use parallel
// aggregation. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 64

// rowChunk is a half-open range of board rows for one worker, with the
// destination for the neighborhood maps it computes.
type rowChunk struct {
	x0, x1 int
	maps   [][]map[int]int
}

// aggPool runs the aggregation phase across persistent workers. The phase
// only reads the pre-tick board, so chunks are independent; each worker
// writes to disjoint rows of the output.
type aggPool struct {
	board      *Board
	numWorkers int

	workChan chan rowChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newAggPool(b *Board) *aggPool {
	return &aggPool{
		board:      b,
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// start launches the persistent worker goroutines.
func (p *aggPool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *aggPool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *aggPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.computeChunk(chunk)
			p.doneChan <- struct{}{}
		}
	}
}

func (p *aggPool) computeChunk(c rowChunk) {
	b := p.board
	for x := c.x0; x < c.x1; x++ {
		for y := 0; y < b.params.Length; y++ {
			c.maps[x][y] = b.neighborhoodAt(x, y)
		}
	}
}

// aggregateAll materializes the neighborhood map of every cell from the
// current board state.
func (p *aggPool) aggregateAll() [][]map[int]int {
	length := p.board.params.Length
	maps := make([][]map[int]int, length)
	for x := range maps {
		maps[x] = make([]map[int]int, length)
	}

	if length < parallelThreshold {
		p.computeChunk(rowChunk{x0: 0, x1: length, maps: maps})
		return maps
	}

	if !p.running {
		p.start()
	}

	chunkSize := (length + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		x0 := w * chunkSize
		x1 := x0 + chunkSize
		if x1 > length {
			x1 = length
		}
		if x0 >= x1 {
			continue
		}
		p.workChan <- rowChunk{x0: x0, x1: x1, maps: maps}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	return maps
}
