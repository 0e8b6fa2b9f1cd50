package arena

// Metrics is a point-in-time view of an arena's memory.
type Metrics struct {
	SizeInUse   int     // bytes handed out since the last Reset
	Capacity    int     // bytes held in chunks
	NumChunks   int     // chunks held, including idle ones
	IdleChunks  int     // chunks kept by Reset and not bumped since
	ChunkSize   int     // size of a regular chunk
	Utilization float64 // SizeInUse / Capacity, 0 when empty
	Released    bool
}

// Metrics walks the chunk list once and returns a snapshot.
func (a *Arena) Metrics() Metrics {
	m := Metrics{
		NumChunks: len(a.chunks),
		ChunkSize: a.chunkSize,
		Released:  a.released,
	}
	for i, c := range a.chunks {
		m.SizeInUse += int(c.offset)
		m.Capacity += len(c.buf)
		if i > a.cur {
			m.IdleChunks++
		}
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	}
	return m
}

// SizeInUse returns the bytes handed out since the last Reset, counting
// alignment padding and the slack left by reallocations that moved.
func (a *Arena) SizeInUse() int { return a.Metrics().SizeInUse }

// NumChunks returns how many chunks the arena holds.
func (a *Arena) NumChunks() int { return len(a.chunks) }

// Capacity returns the combined size of all chunks.
func (a *Arena) Capacity() int { return a.Metrics().Capacity }

// Utilization returns SizeInUse/Capacity, or 0 for an arena with no chunks.
func (a *Arena) Utilization() float64 { return a.Metrics().Utilization }

// ChunkSize returns the size used for regular chunks.
func (a *Arena) ChunkSize() int { return a.chunkSize }
