package contig

// CacheFriendlyFactor returns the mask of frame-number bits that must be
// clear on both sides of a gap for the gap to keep cache behaviour intact.
// Granularities below two pages leave only the lowest bit in the mask.
func CacheFriendlyFactor(granularity, pageSize int) uint32 {
	if granularity < 2*pageSize {
		return 1
	}
	return uint32(granularity/pageSize - 1)
}

// scorer counts gaps over a stream of 32-bit frame numbers. Arithmetic wraps
// at 32 bits, matching the truncated frame numbers it is fed.
type scorer struct {
	factor   uint32
	prev     uint32
	seen     int
	gaps     int
	rejected bool
}

func newScorer(factor uint32) *scorer {
	return &scorer{factor: factor}
}

// next feeds the frame of the next virtual page. It returns false once the
// block is rejected; later frames must not be fed.
func (s *scorer) next(frame uint32) bool {
	if s.seen > 0 && frame != s.prev+1 {
		if s.factor&((s.prev+1)|frame) != 0 {
			s.rejected = true
			return false
		}
		s.gaps++
	}
	s.prev = frame
	s.seen++
	return true
}

// result reports the gap count and whether every fed frame was accepted.
func (s *scorer) result() (int, bool) {
	return s.gaps, !s.rejected
}

// ScoreFrames scores a complete frame sequence. It returns the number of
// compatible gaps and false if an incompatible gap was found.
func ScoreFrames(frames []uint32, factor uint32) (gaps int, ok bool) {
	s := newScorer(factor)
	for _, f := range frames {
		if !s.next(f) {
			break
		}
	}
	return s.result()
}
