package state

// window 是定长的先进先出序列，满了之后淘汰最旧的元素。
type window[T any] struct {
	cap   int
	items []T
}

func newWindow[T any](capacity int) window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return window[T]{cap: capacity, items: make([]T, 0, capacity)}
}

func (w *window[T]) push(v T) {
	if len(w.items) == w.cap {
		copy(w.items, w.items[1:])
		w.items = w.items[:w.cap-1]
	}
	w.items = append(w.items, v)
}

func (w *window[T]) snapshot() []T {
	out := make([]T, len(w.items))
	copy(out, w.items)
	return out
}

func (w *window[T]) len() int { return len(w.items) }
