package lander

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the exact bit patterns of every field in s, so two
// replays of the same action sequence can be compared by a single value.
func (s *Snapshot) Fingerprint() uint64 {
	buf := make([]byte, 0, 8*(5+4*(len(s.Obstacles)+len(s.Pads))+2))
	put := func(v float64) {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	a := s.Agent
	put(a.X)
	put(a.Y)
	put(a.VX)
	put(a.VY)
	put(a.Angle)

	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s.Obstacles)))
	for _, o := range s.Obstacles {
		put(o.Left)
		put(o.Right)
		put(o.Bottom)
		put(o.Top)
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s.Pads)))
	for _, p := range s.Pads {
		put(p.Left)
		put(p.Right)
		put(p.Bottom)
		put(p.Top)
	}
	return xxhash.Sum64(buf)
}
