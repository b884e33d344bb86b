package mpsc

// node holds one buffered message. A node is owned by exactly one list at a
// time: the queue's active list or its freelist.
type node[T any] struct {
	next  *node[T]
	value T
}

// defaultFreelistLimit bounds how many retired nodes a queue keeps for reuse.
const defaultFreelistLimit = 256

// freelist is a LIFO stack of retired nodes. It is only touched under the
// queue lock.
type freelist[T any] struct {
	head  *node[T]
	size  int
	limit int
}

// get returns a recycled node, or a fresh one when the freelist is empty.
func (f *freelist[T]) get() *node[T] {
	n := f.head
	if n == nil {
		return &node[T]{}
	}
	f.head = n.next
	n.next = nil
	f.size--
	return n
}

// put retains n for reuse. It reports false when the freelist is full, in
// which case the node is left to the garbage collector.
func (f *freelist[T]) put(n *node[T]) bool {
	if f.size >= f.limit {
		return false
	}
	n.next = f.head
	f.head = n
	f.size++
	return true
}

// clear drops every retained node.
func (f *freelist[T]) clear() {
	for n := f.head; n != nil; {
		next := n.next
		n.next = nil
		n = next
	}
	f.head = nil
	f.size = 0
}

// storage moves message values in and out of nodes. Typed channels copy by
// value; byte channels copy into a buffer the node keeps across reuse.
type storage[T any] interface {
	store(dst *T, v T)
	load(src *T) T
	reset(dst *T)
}

type valueStorage[T any] struct{}

func (valueStorage[T]) store(dst *T, v T) { *dst = v }
func (valueStorage[T]) load(src *T) T     { return *src }

func (valueStorage[T]) reset(dst *T) {
	var zero T
	*dst = zero
}

// byteStorage keeps each node's backing array so reused nodes do not
// allocate. load always hands out a fresh copy; reset zeroes the payload
// but keeps the array.
type byteStorage struct {
	size int
}

func (b byteStorage) store(dst *[]byte, v []byte) {
	if cap(*dst) < b.size {
		*dst = make([]byte, b.size)
	}
	*dst = (*dst)[:b.size]
	copy(*dst, v)
}

func (b byteStorage) load(src *[]byte) []byte {
	out := make([]byte, len(*src))
	copy(out, *src)
	return out
}

func (byteStorage) reset(dst *[]byte) {
	clear(*dst)
}
