package poller

import (
	"context"
	"sync"
	"time"

	"github.com/dhkim/gapboard/pkg/backend"
	"github.com/dhkim/gapboard/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Fetcher is the slice of the backend client the poller needs.
type Fetcher interface {
	FundingGap(ctx context.Context) ([]backend.GapRow, error)
}

// RenderModel is what one render pass hands to the display: the rows already
// in display order, the sort state that produced that order, and when the
// data was fetched.
type RenderModel struct {
	Rows      []models.FundingRow
	State     ViewState
	FetchedAt time.Time
}

// RenderFunc receives every render pass, both on data refresh and on the
// per-second countdown tick.
type RenderFunc func(RenderModel)

// Poller fetches the funding snapshot on a wall-clock-minute-aligned
// schedule and re-renders every second so countdowns stay live without extra
// network traffic. Fetches run concurrently with the schedule; a monotonic
// sequence number discards responses that complete after a newer one has
// already been applied, so a slow request can never overwrite fresher data.
type Poller struct {
	fetcher  Fetcher
	logger   *logrus.Logger
	onRender RenderFunc

	interval    time.Duration
	renderEvery time.Duration
	now         func() time.Time

	mu            sync.Mutex
	rows          []models.FundingRow
	originalIndex map[string]int
	state         ViewState
	fetchedAt     time.Time
	issuedSeq     uint64
	appliedSeq    uint64

	coll *collate.Collator

	stopOnce sync.Once
	stop     chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(fetcher Fetcher, logger *logrus.Logger, onRender RenderFunc) *Poller {
	return &Poller{
		fetcher:     fetcher,
		logger:      logger,
		onRender:    onRender,
		interval:    time.Minute,
		renderEvery: time.Second,
		now:         time.Now,
		state:       ViewState{SortColumn: ColumnNone, SortDirection: DirectionNone},
		coll:        collate.New(language.Und),
		stop:        make(chan struct{}),
	}
}

// AlignDelay is how long to wait so the next fetch lands at the start of the
// next wall-clock minute. Recomputed from the clock at schedule time, never
// assumed constant.
func AlignDelay(now time.Time) time.Duration {
	elapsed := time.Duration(now.Second())*time.Second +
		time.Duration(now.Nanosecond())*time.Nanosecond
	return time.Minute - elapsed
}

// Start launches the fetch schedule and the render tick. The first fetch
// fires immediately; the second lands on the next minute boundary and the
// rest follow at the fixed cadence from that aligned point.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop cancels the aligned timer, the cadence ticker, the render tick and
// any in-flight fetch request, then waits for everything to settle.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		if p.cancel != nil {
			p.cancel()
		}
	})
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	p.spawnFetch(ctx)

	align := time.NewTimer(AlignDelay(p.now()))
	defer align.Stop()

	renderTick := time.NewTicker(p.renderEvery)
	defer renderTick.Stop()

	var cadence *time.Ticker
	var cadenceC <-chan time.Time
	defer func() {
		if cadence != nil {
			cadence.Stop()
		}
	}()

	for {
		select {
		case <-align.C:
			p.spawnFetch(ctx)
			cadence = time.NewTicker(p.interval)
			cadenceC = cadence.C
		case <-cadenceC:
			p.spawnFetch(ctx)
		case <-renderTick.C:
			p.render()
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) spawnFetch(ctx context.Context) {
	p.mu.Lock()
	p.issuedSeq++
	seq := p.issuedSeq
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.fetch(ctx, seq)
	}()
}

// fetch issues one snapshot request. Any failure skips the refresh entirely:
// no partial render, no error surfaced, stale rows stay visible until the
// next successful fetch.
func (p *Poller) fetch(ctx context.Context, seq uint64) {
	wire, err := p.fetcher.FundingGap(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("Funding snapshot fetch failed, keeping stale data")
		return
	}
	p.apply(seq, MapGapRows(wire))
}

func (p *Poller) apply(seq uint64, rows []models.FundingRow) {
	p.mu.Lock()
	if seq < p.appliedSeq {
		p.mu.Unlock()
		p.logger.WithField("seq", seq).Debug("Discarding stale funding response")
		return
	}
	p.appliedSeq = seq
	p.rows = rows
	p.fetchedAt = p.now()

	// First-seen ordering becomes the permanent fallback display order.
	if p.originalIndex == nil && len(rows) > 0 {
		p.originalIndex = make(map[string]int, len(rows))
		for i, r := range rows {
			p.originalIndex[r.Symbol] = i
		}
	}
	p.mu.Unlock()

	p.render()
}

// ToggleSort advances the sort state for a column header click and re-renders
// with the held data.
func (p *Poller) ToggleSort(c Column) {
	p.mu.Lock()
	p.state.Toggle(c)
	p.mu.Unlock()

	p.render()
}

// Current returns the rows in display order with the active sort state.
func (p *Poller) Current() RenderModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modelLocked()
}

func (p *Poller) render() {
	p.mu.Lock()
	model := p.modelLocked()
	p.mu.Unlock()

	if p.onRender != nil {
		p.onRender(model)
	}
}

func (p *Poller) modelLocked() RenderModel {
	return RenderModel{
		Rows:      sortRows(p.rows, p.state, p.originalIndex, p.coll),
		State:     p.state,
		FetchedAt: p.fetchedAt,
	}
}

// MapGapRows converts wire rows into display rows, scaling funding rates
// from fractions to percentage units. The scale is exact; rounding happens
// only at display time.
func MapGapRows(wire []backend.GapRow) []models.FundingRow {
	rows := make([]models.FundingRow, 0, len(wire))
	for _, w := range wire {
		rows = append(rows, models.FundingRow{
			Symbol:         w.Symbol,
			BinanceRatePct: w.BinanceRate.Shift(2),
			BitgetRatePct:  w.BitgetRate.Shift(2),
			NextFundingAt:  w.NextFundingTime.Ptr(),
		})
	}
	return rows
}

// MapBitgetRows converts the bitget-only endpoint's rows the same way.
func MapBitgetRows(wire []backend.BitgetLatestRow) []models.BitgetRow {
	rows := make([]models.BitgetRow, 0, len(wire))
	for _, w := range wire {
		rows = append(rows, models.BitgetRow{
			Symbol:        w.Symbol,
			RatePct:       w.FundingRate.Shift(2),
			NextFundingAt: w.NextFundingTime.Ptr(),
		})
	}
	return rows
}
