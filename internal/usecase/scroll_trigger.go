package usecase

// ScrollPosition is what the client reports about its contact list container.
type ScrollPosition struct {
	ScrollTop    float64 `json:"scroll_top"`
	ScrollHeight float64 `json:"scroll_height"`
	ClientHeight float64 `json:"client_height"`
}

// Remaining is the distance left to scroll before the bottom.
func (p ScrollPosition) Remaining() float64 {
	return p.ScrollHeight - p.ScrollTop - p.ClientHeight
}

const DefaultScrollThreshold = 1.5

// ScrollTrigger decides when the next contact page is needed: once the remaining scroll
// distance drops under Threshold viewport heights.
type ScrollTrigger struct {
	Threshold float64
}

func NewScrollTrigger(threshold float64) ScrollTrigger {
	if threshold <= 0 {
		threshold = DefaultScrollThreshold
	}
	return ScrollTrigger{Threshold: threshold}
}

// ShouldFetch never fires for a container with no height, which is how an unmounted
// list reports itself.
func (t ScrollTrigger) ShouldFetch(pos ScrollPosition, inFlight, hasMore bool) bool {
	if pos.ClientHeight <= 0 || inFlight || !hasMore {
		return false
	}
	return pos.Remaining() < t.Threshold*pos.ClientHeight
}
