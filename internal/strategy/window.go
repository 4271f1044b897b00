package strategy

// Window is a fixed-capacity rolling window of float64 samples. When full,
// pushing evicts the oldest sample. Capacity is a constructor parameter and
// is independent of any lookback applied on read.
type Window struct {
	buf  []float64
	head int // index of the next write
	size int
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest when the window is full
func (w *Window) Push(v float64) {
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
}

// Len returns the number of samples currently held
func (w *Window) Len() int { return w.size }

// MinLast returns the minimum of the most recent n samples. n is clamped to
// [1, Len]; the window must not be empty.
func (w *Window) MinLast(n int) float64 {
	n = w.clamp(n)
	min := w.at(0)
	for i := 1; i < n; i++ {
		if v := w.at(i); v < min {
			min = v
		}
	}
	return min
}

// MaxLast returns the maximum of the most recent n samples, clamped like
// MinLast.
func (w *Window) MaxLast(n int) float64 {
	n = w.clamp(n)
	max := w.at(0)
	for i := 1; i < n; i++ {
		if v := w.at(i); v > max {
			max = v
		}
	}
	return max
}

// at returns the i-th most recent sample, 0 being the newest
func (w *Window) at(i int) float64 {
	idx := (w.head - 1 - i + 2*len(w.buf)) % len(w.buf)
	return w.buf[idx]
}

func (w *Window) clamp(n int) int {
	if n > w.size {
		n = w.size
	}
	if n < 1 {
		n = 1
	}
	return n
}
