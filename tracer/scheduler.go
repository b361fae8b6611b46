package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler divides the frame evenly between tracers, ignoring
// performance feedback.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	assignment := make([]uint32, len(tracers))
	rows := frameH / uint32(len(tracers))
	var scheduled uint32
	for idx := range tracers {
		assignment[idx] = rows
		scheduled += rows
	}
	assignment[0] += frameH - scheduled
	return assignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same and sizes each tracer's block
// from its previous-frame throughput.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool of
// tracers. For the first frame (or when the tracer pool changes) blocks are
// sized from each tracer's static speed estimate; afterwards from measured
// rows-per-nanosecond throughput.
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	var total float64

	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))

		for _, tr := range tracers {
			total += float64(tr.SpeedEstimate())
		}
		scaler := float64(frameH) / total

		var scheduledRows uint32
		for idx, tr := range tracers {
			sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.SpeedEstimate())*scaler)))
			scheduledRows += sch.blockAssignment[idx]
		}
		balanceRows(sch.blockAssignment, frameH, scheduledRows)

		return sch.blockAssignment
	}

	for _, tr := range tracers {
		stats := tr.Stats()
		total += float64(stats.BlockH) / float64(stats.BlockTime)
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, tr := range tracers {
		stats := tr.Stats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockH)/float64(stats.BlockTime)*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the frame height append the missing
	// ones to the first tracer.
	balanceRows(sch.blockAssignment, frameH, scheduledRows)

	return sch.blockAssignment
}

// Adjust the assignments so they sum exactly to frameH. Flooring usually
// leaves a few rows unassigned; those go to the first tracer. The one-row
// floor per tracer can also overshoot frames shorter than the tracer pool,
// in which case surplus rows are taken back from the largest blocks.
func balanceRows(assignment []uint32, frameH, scheduledRows uint32) {
	if scheduledRows <= frameH {
		assignment[0] += frameH - scheduledRows
		return
	}

	for surplus := scheduledRows - frameH; surplus > 0; surplus-- {
		maxIdx := 0
		for idx := range assignment {
			if assignment[idx] > assignment[maxIdx] {
				maxIdx = idx
			}
		}
		if assignment[maxIdx] == 0 {
			return
		}
		assignment[maxIdx]--
	}
}
