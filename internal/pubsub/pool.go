package pubsub

import "runtime"

// workerPool is a bounded, FIFO-ish dispatch pool for publish fan-out:
// one shared mutex+queue (here a buffered channel, idiomatic for Go) guards
// a set of worker goroutines whose count defaults to hardware concurrency,
// per spec.md §4.7/§5.
type workerPool struct {
	tasks chan func()
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &workerPool{tasks: make(chan func(), 256)}
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *workerPool) run() {
	for fn := range p.tasks {
		fn()
	}
}

// Submit enqueues fn for execution by some worker. Submission order from a
// single caller is preserved by the channel; this is what gives
// per-publisher-to-per-subscriber delivery its FIFO property (spec.md §5).
func (p *workerPool) Submit(fn func()) {
	p.tasks <- fn
}
