package expreplay

// sumTree is a fixed-size array-backed binary tree storing one
// priority mass per buffer slot. Leaves are keyed by the same slot
// indices as the circular storage, so overwriting a slot's priority
// on wraparound is a single set call. Internal nodes hold the sum of
// their children, giving O(log n) updates and O(log n) sampling of a
// leaf by prefix mass.
type sumTree struct {
	capacity int
	nodes    []float64 // 1-indexed heap layout; leaves at [capacity, 2*capacity)
}

func newSumTree(capacity int) *sumTree {
	return &sumTree{
		capacity: capacity,
		nodes:    make([]float64, 2*capacity),
	}
}

// set overwrites the mass at the given slot and propagates the change
// up to the root
func (s *sumTree) set(slot int, mass float64) {
	i := slot + s.capacity
	s.nodes[i] = mass

	for i > 1 {
		i /= 2
		s.nodes[i] = s.nodes[2*i] + s.nodes[2*i+1]
	}
}

// get returns the mass stored at the given slot
func (s *sumTree) get(slot int) float64 {
	return s.nodes[slot+s.capacity]
}

// total returns the sum of all stored masses
func (s *sumTree) total() float64 {
	return s.nodes[1]
}

// find returns the slot whose cumulative mass interval contains the
// argument mass, for mass in [0, total())
func (s *sumTree) find(mass float64) int {
	i := 1
	for i < s.capacity {
		left := 2 * i
		if mass < s.nodes[left] {
			i = left
		} else {
			mass -= s.nodes[left]
			i = left + 1
		}
	}
	return i - s.capacity
}
