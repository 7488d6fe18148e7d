package image

import "sync"

// Pool recycles scratch buffers, bucketed by size and format. A nil *Pool
// allocates on every Get and drops every Put.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	buckets   map[poolKey][]*ImageBuf
	perBucket int
}

type poolKey struct {
	width, height int
	format        Format
}

// NewPool returns a pool retaining at most perBucket buffers of each size
// and format. perBucket <= 0 retains nothing.
func NewPool(perBucket int) *Pool {
	return &Pool{
		buckets:   make(map[poolKey][]*ImageBuf),
		perBucket: perBucket,
	}
}

// Get returns a buffer of the requested size and format. A recycled buffer
// keeps its previous contents; callers fill it before reading.
func (p *Pool) Get(width, height int, format Format) (*ImageBuf, error) {
	if p != nil {
		key := poolKey{width: width, height: height, format: format}
		p.mu.Lock()
		if bucket := p.buckets[key]; len(bucket) > 0 {
			buf := bucket[len(bucket)-1]
			p.buckets[key] = bucket[:len(bucket)-1]
			p.mu.Unlock()
			return buf, nil
		}
		p.mu.Unlock()
	}
	return NewImageBuf(width, height, format)
}

// Put hands buf back for reuse. Views created with SubImage share its
// pixels and must not be used afterwards.
func (p *Pool) Put(buf *ImageBuf) {
	if p == nil || buf == nil || p.perBucket <= 0 {
		return
	}
	key := poolKey{width: buf.width, height: buf.height, format: buf.format}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buckets[key]) < p.perBucket {
		p.buckets[key] = append(p.buckets[key], buf)
	}
}

// Len returns the number of idle buffers held.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
