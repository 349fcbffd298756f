package view

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dhkim/gapboard/pkg/poller"
	"github.com/dhkim/gapboard/pkg/stream"
)

const clearSequence = "\033[2J\033[H"

// Screen holds the latest render inputs from both subsystems and redraws
// the whole output on every update. All view-state writes are serialized
// behind its mutex; it is the single owner of the rendered output.
type Screen struct {
	out   io.Writer
	clear bool
	now   func() time.Time

	mu         sync.Mutex
	funding    poller.RenderModel
	hasFunding bool
	positions  stream.Snapshot
	connStatus stream.Status
}

func NewScreen(out io.Writer, clear bool) *Screen {
	return &Screen{
		out:        out,
		clear:      clear,
		now:        time.Now,
		connStatus: stream.StatusClosed,
		positions:  stream.Snapshot{Kind: stream.SnapshotEmpty},
	}
}

// ApplyFunding replaces the funding section wholesale and redraws.
func (s *Screen) ApplyFunding(model poller.RenderModel) {
	s.mu.Lock()
	s.funding = model
	s.hasFunding = true
	s.draw()
	s.mu.Unlock()
}

// ApplyPositions replaces the position section wholesale and redraws.
func (s *Screen) ApplyPositions(snap stream.Snapshot) {
	s.mu.Lock()
	s.positions = snap
	s.draw()
	s.mu.Unlock()
}

// ApplyStatus updates the connection badge and redraws.
func (s *Screen) ApplyStatus(status stream.Status) {
	s.mu.Lock()
	s.connStatus = status
	s.draw()
	s.mu.Unlock()
}

// Positions returns the latest position snapshot.
func (s *Screen) Positions() stream.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions
}

// ConnStatus returns the current feed connection state.
func (s *Screen) ConnStatus() stream.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connStatus
}

func (s *Screen) draw() {
	now := s.now()

	if s.clear {
		fmt.Fprint(s.out, clearSequence)
	}

	fmt.Fprintf(s.out, "feed: %s", statusBadge(s.connStatus))
	if s.hasFunding && !s.funding.FetchedAt.IsZero() {
		fmt.Fprintf(s.out, "    last update: %s    next update in: %ds",
			s.funding.FetchedAt.Format("15:04:05"),
			int(poller.AlignDelay(now)/time.Second)+1,
		)
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out)

	if s.hasFunding {
		fmt.Fprintln(s.out, "FUNDING GAP")
		WriteFundingTable(s.out, s.funding, now)
		fmt.Fprintln(s.out)
	}

	fmt.Fprintln(s.out, "OPEN POSITIONS")
	WritePositionsTable(s.out, s.positions)
}

func statusBadge(status stream.Status) string {
	switch status {
	case stream.StatusOpen:
		return "connected"
	case stream.StatusConnecting:
		return "connecting..."
	case stream.StatusError:
		return "error"
	default:
		return "disconnected, retrying..."
	}
}
