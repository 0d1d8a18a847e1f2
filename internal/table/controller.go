// Package table drives a paginated, searchable list of one backend resource.
//
// A Controller owns the list state of a single screen. Every change to the
// search term, page or page size issues a fetch tagged with a new epoch, and
// a response is applied only while its epoch is still current, so a slow
// earlier request never overwrites a later one. Deletes are staged in a
// confirmation gate and applied optimistically; failed deletes roll back.
package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/clock"
	"github.com/BinitGoswami/my-placement/internal/confirm"
	"github.com/BinitGoswami/my-placement/internal/events"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/notify"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search term is committed.
const DefaultDebounce = 400 * time.Millisecond

// ErrUnsupported is returned by Create and Update when the controller was
// configured without the corresponding function.
var ErrUnsupported = errors.New("operation not supported for this resource")

// Outcome is the result of an Update.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeUnchanged
	OutcomeUpdated
)

// Config parameterizes a Controller. Fetch, Delete and IDOf are required.
type Config[T any] struct {
	Fetch  func(ctx context.Context, p model.ListParams) (*model.ListResult[T], error)
	Delete func(ctx context.Context, id string) error
	Update func(ctx context.Context, id string, payload map[string]any) (T, error)
	Create func(ctx context.Context, payload map[string]any) (T, error)

	IDOf func(T) string

	// Fields projects an item to the field map compared by Update's
	// change detection. Required when Update is set.
	Fields func(T) map[string]any

	// Noun names one item in notifications, e.g. "Department".
	Noun string

	PageSize model.PageSize
	Debounce time.Duration

	Notifier notify.Notifier
	Confirm  *confirm.Gate
	Clock    clock.Clock
	Logger   *slog.Logger

	// OnChange receives a snapshot after every state change. Calls are
	// serialized. It must not call back into the controller.
	OnChange func(State[T])

	// RefetchAfterMutation reloads the page after a successful delete or
	// update instead of trusting the local splice.
	RefetchAfterMutation bool

	// Publisher announces successful mutations of Resource to other
	// consoles, tagged with Origin.
	Publisher events.Publisher
	Resource  string
	Origin    string
}

// Controller is the list state machine of one resource screen.
type Controller[T any] struct {
	cfg Config[T]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	st        State[T]
	closed    bool
	debounce  clock.Timer
	searchGen uint64

	// deleting counts unsettled deletes per id. Fetched pages hide those
	// rows until the delete settles.
	deleting map[string]int
	// loads counts applied fetches.
	loads uint64

	emitMu sync.Mutex
}

// New validates cfg and returns an idle controller. Call Refresh to load
// the first page.
func New[T any](cfg Config[T]) (*Controller[T], error) {
	if cfg.Fetch == nil {
		return nil, errors.New("table: Fetch is required")
	}
	if cfg.Delete == nil {
		return nil, errors.New("table: Delete is required")
	}
	if cfg.IDOf == nil {
		return nil, errors.New("table: IDOf is required")
	}
	if cfg.Update != nil && cfg.Fields == nil {
		return nil, errors.New("table: Fields is required with Update")
	}
	if cfg.Noun == "" {
		cfg.Noun = "Record"
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Notifier == nil {
		cfg.Notifier = discard{}
	}
	if cfg.Confirm == nil {
		cfg.Confirm = confirm.NewGate()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = &events.NoopPublisher{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		cfg:    cfg,
		ctx:    ctx,
		cancel:   cancel,
		deleting: make(map[string]int),
		st: State[T]{
			Items:    []T{},
			Page:     1,
			PageSize: cfg.PageSize.OrDefault(),
			Status:   StatusIdle,
		},
	}, nil
}

// State returns a snapshot of the list.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Gate returns the confirmation gate deletes are staged in.
func (c *Controller[T]) Gate() *confirm.Gate { return c.cfg.Confirm }

// Refresh refetches the current view.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.startFetchLocked()
	c.mu.Unlock()
	c.emit()
}

// SetSearch records raw search input. The term is committed, and page 1 of
// its results fetched, once no further input arrives for the debounce period.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.st.Search = term
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.searchGen++
	gen := c.searchGen
	c.debounce = c.cfg.Clock.AfterFunc(c.cfg.Debounce, func() { c.commitSearch(gen) })
	c.mu.Unlock()
	c.emit()
}

// CommitSearch commits the raw search input immediately.
func (c *Controller[T]) CommitSearch() {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.searchGen++
	gen := c.searchGen
	c.mu.Unlock()
	c.commitSearch(gen)
}

func (c *Controller[T]) commitSearch(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.searchGen {
		c.mu.Unlock()
		return
	}
	c.debounce = nil
	if c.st.Search == c.st.CommittedSearch && c.st.Page == 1 && c.st.Status != StatusIdle {
		c.mu.Unlock()
		return
	}
	c.st.CommittedSearch = c.st.Search
	c.st.Page = 1
	c.startFetchLocked()
	c.mu.Unlock()
	c.emit()
}

// SetPage moves to page n, clamped to the known page range. It is a no-op
// with an unbounded page size.
func (c *Controller[T]) SetPage(n int) {
	c.mu.Lock()
	if c.closed || !c.st.Paged() {
		c.mu.Unlock()
		return
	}
	if c.st.Status == StatusLoaded {
		n = min(n, c.st.TotalPages())
	}
	n = max(n, 1)
	if n == c.st.Page {
		c.mu.Unlock()
		return
	}
	c.st.Page = n
	c.startFetchLocked()
	c.mu.Unlock()
	c.emit()
}

// NextPage moves forward one page if there is one.
func (c *Controller[T]) NextPage() {
	st := c.State()
	if st.HasNext() {
		c.SetPage(st.Page + 1)
	}
}

// PrevPage moves back one page if there is one.
func (c *Controller[T]) PrevPage() {
	st := c.State()
	if st.HasPrev() {
		c.SetPage(st.Page - 1)
	}
}

// SetPageSize changes the page size and returns to page 1.
func (c *Controller[T]) SetPageSize(size model.PageSize) {
	size = size.OrDefault()
	c.mu.Lock()
	if c.closed || size == c.st.PageSize {
		c.mu.Unlock()
		return
	}
	c.st.PageSize = size
	c.st.Page = 1
	c.startFetchLocked()
	c.mu.Unlock()
	c.emit()
}

// Close stops the controller. Responses that arrive afterwards are
// discarded and no further notifications are raised. Mutations already
// confirmed still complete on the backend.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.mu.Unlock()
	c.cancel()
}

// Wait blocks until every fetch and background mutation has finished.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// startFetchLocked bumps the epoch and fetches the current view in the
// background. Caller holds c.mu.
func (c *Controller[T]) startFetchLocked() {
	c.st.Epoch++
	c.st.Status = StatusLoading
	epoch := c.st.Epoch
	params := c.st.Params()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.cfg.Fetch(c.ctx, params)
		c.applyFetch(epoch, params, res, err)
	}()
}

func (c *Controller[T]) applyFetch(epoch uint64, params model.ListParams, res *model.ListResult[T], err error) {
	c.mu.Lock()
	if c.closed || epoch != c.st.Epoch {
		c.mu.Unlock()
		c.cfg.Logger.Debug("discarding stale list response",
			"resource", c.cfg.Resource,
			"epoch", epoch,
		)
		return
	}

	if err != nil {
		c.st.Status = StatusError
		c.st.Err = err
		c.mu.Unlock()
		c.emit()
		c.cfg.Logger.Warn("list fetch failed",
			"resource", c.cfg.Resource,
			"page", params.Page,
			"error", err,
		)
		c.report(err, "Failed to load records. Please try again.")
		return
	}

	items := []T{}
	total := 0
	if res != nil {
		total = max(res.Total, 0)
		for _, it := range res.Data {
			if c.deleting[c.cfg.IDOf(it)] > 0 {
				total = max(total-1, 0)
				continue
			}
			items = append(items, it)
		}
	}
	if !params.PageSize.IsUnbounded() && len(items) > int(params.PageSize) {
		items = items[:params.PageSize]
	}
	c.st.Items = items
	c.st.Total = total
	c.st.Status = StatusLoaded
	c.st.Err = nil
	c.loads++

	// The result may have shrunk below the current page.
	if last := c.st.TotalPages(); c.st.Paged() && c.st.Page > last {
		c.st.Page = last
		c.startFetchLocked()
	}
	c.mu.Unlock()
	c.emit()
}

// RequestDelete stages the deletion of item in the confirmation gate.
// Nothing happens until the gate is confirmed.
func (c *Controller[T]) RequestDelete(item T) {
	id := c.cfg.IDOf(item)
	c.cfg.Confirm.Stage(
		fmt.Sprintf("Delete %s %s? This cannot be undone.", strings.ToLower(c.cfg.Noun), id),
		func(ctx context.Context) error { return c.delete(ctx, item) },
	)
}

// delete removes item from the list at once and deletes it on the backend
// in the background. A failed delete puts the item back where it was when
// the list is untouched since, and refetches when a fetch has replaced it.
func (c *Controller[T]) delete(ctx context.Context, item T) error {
	id := c.cfg.IDOf(item)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.deleting[id]++
	idx := c.indexLocked(id)
	var removed T
	if idx >= 0 {
		removed = c.st.Items[idx]
		items := make([]T, 0, len(c.st.Items)-1)
		items = append(items, c.st.Items[:idx]...)
		items = append(items, c.st.Items[idx+1:]...)
		c.st.Items = items
		c.st.Total = max(c.st.Total-1, 0)
	}
	mark := deleteMark{epoch: c.st.Epoch, loads: c.loads, idx: idx}
	c.mu.Unlock()
	c.emit()

	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := c.cfg.Delete(bg, id)
		c.settleDelete(id)
		if err != nil {
			c.rollbackDelete(id, mark, removed)
			c.report(err, fmt.Sprintf("Failed to delete %s.", strings.ToLower(c.cfg.Noun)))
			return
		}
		c.notifySuccess(fmt.Sprintf("%s deleted.", c.cfg.Noun))
		c.publish(bg, events.OpDeleted, id)
		c.afterMutation(true)
	}()
	return nil
}

// deleteMark is the list position a delete was applied at.
type deleteMark struct {
	epoch uint64
	loads uint64
	idx   int
}

func (c *Controller[T]) settleDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting[id]--; c.deleting[id] <= 0 {
		delete(c.deleting, id)
	}
}

func (c *Controller[T]) rollbackDelete(id string, mark deleteMark, item T) {
	c.mu.Lock()
	if c.closed || c.indexLocked(id) >= 0 {
		c.mu.Unlock()
		return
	}
	if c.loads != mark.loads {
		// A fetch applied meanwhile hid the row; reload to get it back.
		c.startFetchLocked()
		c.mu.Unlock()
		c.emit()
		return
	}
	if mark.idx < 0 || mark.epoch != c.st.Epoch {
		// A newer fetch is in flight and will include the row.
		c.mu.Unlock()
		return
	}
	at := min(mark.idx, len(c.st.Items))
	items := make([]T, 0, len(c.st.Items)+1)
	items = append(items, c.st.Items[:at]...)
	items = append(items, item)
	items = append(items, c.st.Items[at:]...)
	c.st.Items = items
	c.st.Total++
	c.mu.Unlock()
	c.emit()
}

// Update applies payload to original. A payload that matches original after
// normalization is not sent; the user is told there is nothing to save.
func (c *Controller[T]) Update(ctx context.Context, original T, payload map[string]any) (Outcome, error) {
	if c.cfg.Update == nil {
		return OutcomeFailed, ErrUnsupported
	}
	if unchanged(c.cfg.Fields(original), payload) {
		c.cfg.Notifier.Info("No changes to save.")
		return OutcomeUnchanged, nil
	}

	id := c.cfg.IDOf(original)
	updated, err := c.cfg.Update(ctx, id, payload)
	if err != nil {
		c.report(err, fmt.Sprintf("Failed to update %s.", strings.ToLower(c.cfg.Noun)))
		return OutcomeFailed, err
	}

	c.mu.Lock()
	if idx := c.indexLocked(id); idx >= 0 && !c.closed {
		items := make([]T, len(c.st.Items))
		copy(items, c.st.Items)
		items[idx] = updated
		c.st.Items = items
	}
	c.mu.Unlock()
	c.emit()

	c.notifySuccess(fmt.Sprintf("%s updated.", c.cfg.Noun))
	c.publish(ctx, events.OpUpdated, id)
	c.afterMutation(false)
	return OutcomeUpdated, nil
}

// Create adds a record and reloads the current view.
func (c *Controller[T]) Create(ctx context.Context, payload map[string]any) (T, error) {
	var zero T
	if c.cfg.Create == nil {
		return zero, ErrUnsupported
	}
	created, err := c.cfg.Create(ctx, payload)
	if err != nil {
		c.report(err, fmt.Sprintf("Failed to create %s.", strings.ToLower(c.cfg.Noun)))
		return zero, err
	}
	c.notifySuccess(fmt.Sprintf("%s created.", c.cfg.Noun))
	c.publish(ctx, events.OpCreated, c.cfg.IDOf(created))
	c.Refresh()
	return created, nil
}

// afterMutation refetches when configured to, or when a delete emptied a
// page that is no longer in range.
func (c *Controller[T]) afterMutation(deleted bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	refetch := c.cfg.RefetchAfterMutation
	if deleted && len(c.st.Items) == 0 && c.st.Paged() && c.st.Page > 1 {
		c.st.Page = min(c.st.Page, c.st.TotalPages())
		refetch = true
	}
	if refetch {
		c.startFetchLocked()
	}
	c.mu.Unlock()
	if refetch {
		c.emit()
	}
}

func (c *Controller[T]) indexLocked(id string) int {
	for i, it := range c.st.Items {
		if c.cfg.IDOf(it) == id {
			return i
		}
	}
	return -1
}

// report surfaces err as an error notification. Expired sessions are
// handled by the redirect and are not reported again here.
func (c *Controller[T]) report(err error, fallback string) {
	if c.isClosed() || errors.Is(err, client.ErrSessionExpired) || errors.Is(err, context.Canceled) {
		return
	}
	c.cfg.Notifier.Error(client.UserMessage(err, fallback))
}

func (c *Controller[T]) notifySuccess(msg string) {
	if c.isClosed() {
		return
	}
	c.cfg.Notifier.Success(msg)
}

func (c *Controller[T]) publish(ctx context.Context, op events.Op, id string) {
	if c.cfg.Resource == "" {
		return
	}
	ev := events.RecordChanged{
		Resource: c.cfg.Resource,
		Op:       op,
		ID:       id,
		Origin:   c.cfg.Origin,
		At:       c.cfg.Clock.Now(),
	}
	if err := c.cfg.Publisher.Publish(ctx, events.Topic(c.cfg.Resource), ev); err != nil {
		c.cfg.Logger.Warn("publishing record change failed",
			"resource", c.cfg.Resource,
			"op", op,
			"error", err,
		)
	}
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// snapshot copies the state. Caller holds c.mu.
func (c *Controller[T]) snapshot() State[T] {
	s := c.st
	s.Items = make([]T, len(c.st.Items))
	copy(s.Items, c.st.Items)
	return s
}

func (c *Controller[T]) emit() {
	if c.cfg.OnChange == nil {
		return
	}
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.cfg.OnChange(c.State())
}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}
func (discard) Info(string)    {}
