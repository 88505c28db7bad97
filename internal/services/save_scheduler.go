package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/logging"
)

// ErrStaleCell is returned by a SaveFunc when the cell left the view before
// its save fired. The save is dropped and the cell goes back to idle.
var ErrStaleCell = stderrors.New("cell is no longer in view")

// SaveFunc persists the current value of a cell. It must read the cell as
// it is when called, not as it was when the save was scheduled.
type SaveFunc func(ctx context.Context, key domain.CellKey) error

// StatusFunc observes save status changes. err is set for SaveError.
type StatusFunc func(key domain.CellKey, status domain.SaveStatus, err error)

// SchedulerOptions configures a SaveScheduler. Zero values take defaults.
type SchedulerOptions struct {
	SavedDisplay time.Duration
	ErrorDisplay time.Duration
	SaveTimeout  time.Duration
	Clock        Clock
	OnStatus     StatusFunc
}

const (
	defaultSavedDisplay = 3 * time.Second
	defaultErrorDisplay = 5 * time.Second
	defaultSaveTimeout  = 10 * time.Second
)

type pendingSave struct {
	gen   uint64
	timer Timer
}

type cellStatus struct {
	status domain.SaveStatus
	err    error
	gen    uint64
	revert Timer
}

// SaveScheduler debounces saves per cell and tracks their status.
type SaveScheduler struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	save     SaveFunc
	opts     SchedulerOptions
	seq      uint64
	pending  map[domain.CellKey]*pendingSave
	statuses map[domain.CellKey]*cellStatus
	keyLocks map[domain.CellKey]*sync.Mutex
	inflight sync.WaitGroup
	closed   bool
}

// NewSaveScheduler returns a scheduler that calls save for each fired cell.
// Saves run with a context derived from ctx.
func NewSaveScheduler(ctx context.Context, save SaveFunc, opts SchedulerOptions) *SaveScheduler {
	if opts.SavedDisplay <= 0 {
		opts.SavedDisplay = defaultSavedDisplay
	}
	if opts.ErrorDisplay <= 0 {
		opts.ErrorDisplay = defaultErrorDisplay
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &SaveScheduler{
		ctx:      ctx,
		cancel:   cancel,
		save:     save,
		opts:     opts,
		pending:  make(map[domain.CellKey]*pendingSave),
		statuses: make(map[domain.CellKey]*cellStatus),
		keyLocks: make(map[domain.CellKey]*sync.Mutex),
	}
}

// Schedule (re)starts the debounce timer of key. A pending save of the same
// key is replaced.
func (s *SaveScheduler) Schedule(key domain.CellKey, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
	}
	s.seq++
	gen := s.seq
	s.pending[key] = &pendingSave{
		gen:   gen,
		timer: s.opts.Clock.AfterFunc(delay, func() { s.fire(key, gen) }),
	}
}

// Pending reports whether key has a save waiting for its timer.
func (s *SaveScheduler) Pending(key domain.CellKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Status returns the save status of key and the error of a failed save.
func (s *SaveScheduler) Status(key domain.CellKey) (domain.SaveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.statuses[key]; ok {
		return st.status, st.err
	}
	return domain.SaveIdle, nil
}

// CancelAll drops the pending saves whose key matches and returns how many
// were dropped. Saves already running are not interrupted.
func (s *SaveScheduler) CancelAll(match func(domain.CellKey) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, p := range s.pending {
		if match == nil || match(key) {
			p.timer.Stop()
			delete(s.pending, key)
			n++
		}
	}
	if n > 0 {
		logging.Logger().Debug("pending saves cancelled", logging.KeyCount, n)
	}
	return n
}

// Flush fires every pending save now and waits for all running saves to
// finish. It returns the errors of the saves it fired.
func (s *SaveScheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	type job struct {
		key domain.CellKey
		gen uint64
	}
	jobs := make([]job, 0, len(s.pending))
	for key, p := range s.pending {
		p.timer.Stop()
		jobs = append(jobs, job{key: key, gen: p.gen})
	}
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := s.fire(j.key, j.gen); err != nil {
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, errors.NewTimeoutError("flush saves", ctx.Err().Error()))
	}
	return stderrors.Join(errs...)
}

// Close cancels every pending save and revert. Timers that fire later do
// nothing and running saves see a cancelled context.
func (s *SaveScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
	for _, st := range s.statuses {
		if st.revert != nil {
			st.revert.Stop()
		}
	}
	s.cancel()
}

func (s *SaveScheduler) fire(key domain.CellKey, gen uint64) error {
	s.mu.Lock()
	p, ok := s.pending[key]
	if s.closed || !ok || p.gen != gen {
		s.mu.Unlock()
		return nil
	}
	delete(s.pending, key)
	s.inflight.Add(1)
	lock := s.keyLock(key)
	s.mu.Unlock()
	defer s.inflight.Done()

	// saves of one cell never overlap
	lock.Lock()
	defer lock.Unlock()

	s.setStatus(key, gen, domain.SaveSaving, nil)

	saveID := logging.NewID()
	logger := logging.FromContext(s.ctx).With(
		logging.KeySaveID, saveID,
		logging.KeyProject, key.ProjectID,
		logging.KeyDate, key.Date.String(),
	)
	logger.Debug("save dispatched")

	ctx, cancel := context.WithTimeout(logging.WithRequestID(s.ctx), s.opts.SaveTimeout)
	defer cancel()
	start := s.opts.Clock.Now()
	err := s.save(ctx, key)

	switch {
	case stderrors.Is(err, ErrStaleCell):
		logger.Debug("stale save dropped")
		s.setStatus(key, gen, domain.SaveIdle, nil)
		return nil
	case err != nil:
		if errors.ShouldLogError(err) {
			logger.Warn("save failed", logging.KeyError, err)
		} else {
			logger.Debug("save rejected", logging.KeyError, err)
		}
		s.setStatus(key, gen, domain.SaveError, err)
		return err
	default:
		logger.Debug("save succeeded", "elapsed", s.opts.Clock.Now().Sub(start))
		s.setStatus(key, gen, domain.SaveSaved, nil)
		return nil
	}
}

// setStatus records a status for generation gen of key and arms the revert
// to idle for saved and error.
func (s *SaveScheduler) setStatus(key domain.CellKey, gen uint64, status domain.SaveStatus, err error) {
	s.mu.Lock()
	st, ok := s.statuses[key]
	if !ok {
		st = &cellStatus{}
		s.statuses[key] = st
	}
	if st.gen > gen {
		// a newer save owns the status
		s.mu.Unlock()
		return
	}
	if st.revert != nil {
		st.revert.Stop()
		st.revert = nil
	}
	st.status, st.err, st.gen = status, err, gen

	var display time.Duration
	switch status {
	case domain.SaveSaved:
		display = s.opts.SavedDisplay
	case domain.SaveError:
		display = s.opts.ErrorDisplay
	}
	if display > 0 && !s.closed {
		st.revert = s.opts.Clock.AfterFunc(display, func() { s.revert(key, gen) })
	}
	onStatus := s.opts.OnStatus
	s.mu.Unlock()

	if onStatus != nil {
		onStatus(key, status, err)
	}
}

func (s *SaveScheduler) revert(key domain.CellKey, gen uint64) {
	s.mu.Lock()
	st, ok := s.statuses[key]
	if s.closed || !ok || st.gen != gen || st.status == domain.SaveSaving || st.status == domain.SaveIdle {
		s.mu.Unlock()
		return
	}
	st.status, st.err, st.revert = domain.SaveIdle, nil, nil
	onStatus := s.opts.OnStatus
	s.mu.Unlock()

	if onStatus != nil {
		onStatus(key, domain.SaveIdle, nil)
	}
}

// keyLock returns the mutex serialising saves of key. Callers hold s.mu.
func (s *SaveScheduler) keyLock(key domain.CellKey) *sync.Mutex {
	l, ok := s.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[key] = l
	}
	return l
}
