package signal

const (
	// RSSIWindow is the number of decimated samples the filter remembers:
	// 0.15 time units at an assumed 200 samples per unit.
	RSSIWindow = 30
	// RSSIDecimation is the iteration stride between filter updates.
	RSSIDecimation = 10
	// RSSIScale is the filter output for a window full of changes.
	RSSIScale = 1024
)

// RSSIFilter counts how many of the last RSSIWindow decimated samples differed
// from their predecessor and scales the count to 0..RSSIScale.
//
// Despite the name it does not average the RSSI magnitude. Blackbox viewers
// only see a link-activity indicator derived from value changes.
//
// The zero value is ready to use.
type RSSIFilter struct {
	window [RSSIWindow]uint8
	sum    int
	last   uint16
	cursor int
}

// Update feeds one decimated sample and returns the new filter value.
func (f *RSSIFilter) Update(raw uint16) uint32 {
	f.sum -= int(f.window[f.cursor])

	var delta uint8
	if raw != f.last {
		delta = 1
	}
	// A drop to zero on an idle window is a receiver reset, not activity.
	if raw < f.last && raw == 0 && f.sum == 0 {
		delta = 0
	}

	f.last = raw
	f.sum += int(delta)
	f.window[f.cursor] = delta
	f.cursor = (f.cursor + 1) % RSSIWindow

	return f.Value()
}

// Sample updates the filter when iteration falls on the decimation stride and
// returns the current value either way.
func (f *RSSIFilter) Sample(iteration uint32, raw uint16) uint32 {
	if iteration%RSSIDecimation == 0 {
		return f.Update(raw)
	}

	return f.Value()
}

// Value returns floor(RSSIScale * changes / RSSIWindow).
func (f *RSSIFilter) Value() uint32 {
	return uint32(RSSIScale * f.sum / RSSIWindow) //nolint:gosec
}

// Changes returns the number of changes in the current window.
func (f *RSSIFilter) Changes() int {
	return f.sum
}

// Reset clears the filter back to its zero state.
func (f *RSSIFilter) Reset() {
	*f = RSSIFilter{}
}
