package tracer

import (
	"testing"

	"github.com/achilleasa/isoray/scene"
)

func TestNaiveScheduler(t *testing.T) {
	type spec struct {
		frameH   uint32
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		spec{10, 5, 5},
		spec{11, 6, 5},
		spec{1, 1, 0},
	}

	for index, s := range specs {
		tr1 := makeMockTracer("mock-1", 1.0)
		tr2 := makeMockTracer("mock-2", 100.0)
		tracers := []Tracer{tr1, tr2}

		sch := NaiveScheduler()
		blockAssignment := sch.Schedule(tracers, s.frameH)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected tracer 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected tracer 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}
	}
}

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		frameH    uint32
		rowsDone1 uint32
		rowsDone2 uint32
		time1     int64
		time2     int64
		expRows1  uint32
		expRows2  uint32
	}
	specs := []spec{
		// First call sizes blocks from the static speed estimates.
		spec{12, 0, 0, 0, 0, 3, 9},
		// Later calls use the measured rows/ns throughput.
		spec{12, 3, 9, 3e9, 3e9, 3, 9},
		// This time tracer 1 performed much better.
		spec{12, 3, 9, 1e9, 9e9, 9, 3},
	}

	tr1 := makeMockTracer("mock-1", 1.0)
	tr2 := makeMockTracer("mock-2", 3.0)
	tracers := []Tracer{tr1, tr2}

	sch := NewPerfectScheduler()
	for index, s := range specs {
		tr1.stats.BlockH, tr1.stats.BlockTime = s.rowsDone1, s.time1
		tr2.stats.BlockH, tr2.stats.BlockTime = s.rowsDone2, s.time2

		blockAssignment := sch.Schedule(tracers, s.frameH)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected tracer 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected tracer 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}

		var total uint32
		for _, rows := range blockAssignment {
			total += rows
		}
		if total != s.frameH {
			t.Fatalf("[spec %d] expected assignments to cover %d rows; got %d", index, s.frameH, total)
		}
	}
}

func TestPerfectSchedulerSmallFrames(t *testing.T) {
	// Frames shorter than the tracer pool: the one-row floor per tracer
	// overshoots, and the surplus must be trimmed rather than wrapping the
	// first tracer's row count around.
	tr1 := makeMockTracer("mock-1", 1.0)
	tr2 := makeMockTracer("mock-2", 1.0)
	tr3 := makeMockTracer("mock-3", 1.0)
	tracers := []Tracer{tr1, tr2, tr3}

	sch := NewPerfectScheduler()

	// First call sizes blocks from the static speed estimates.
	blockAssignment := sch.Schedule(tracers, 2)
	checkAssignmentCovers(t, blockAssignment, 2)

	// Later calls size blocks from the measured throughput.
	for _, tr := range []*mockTracer{tr1, tr2, tr3} {
		tr.stats.BlockH, tr.stats.BlockTime = 4, 1e9
	}
	blockAssignment = sch.Schedule(tracers, 1)
	checkAssignmentCovers(t, blockAssignment, 1)
}

func checkAssignmentCovers(t *testing.T, blockAssignment []uint32, frameH uint32) {
	t.Helper()

	var total uint32
	for idx, rows := range blockAssignment {
		if rows > frameH {
			t.Fatalf("expected tracer %d to be assigned at most %d rows; got %d", idx, frameH, rows)
		}
		total += rows
	}
	if total != frameH {
		t.Fatalf("expected assignments to cover %d rows; got %d", frameH, total)
	}
}

type mockTracer struct {
	id    string
	speed float32
	stats *Stats
}

func makeMockTracer(id string, speed float32) *mockTracer {
	return &mockTracer{
		id:    id,
		speed: speed,
		stats: &Stats{},
	}
}

func (mt *mockTracer) Id() string {
	return mt.id
}

func (mt *mockTracer) Close() {
}

func (mt *mockTracer) SpeedEstimate() float32 {
	return mt.speed
}

func (mt *mockTracer) Setup(_, _ uint32, _ []uint8) error {
	return nil
}

func (mt *mockTracer) UpdateScene(_ *scene.Buffers, _ scene.Environment, _ *scene.Camera) error {
	return nil
}

func (mt *mockTracer) Enqueue(_ BlockRequest) {
}

func (mt *mockTracer) Stats() *Stats {
	return mt.stats
}
