package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/erikrandall/csla/binding"
	"github.com/erikrandall/csla/filtered"
	"github.com/erikrandall/csla/internal/record"
	"github.com/erikrandall/csla/internal/store"
	"github.com/erikrandall/csla/internal/trace"
)

// DefaultRunID is used when neither the scenario nor the caller supplies a
// run id, so golden traces stay deterministic.
const DefaultRunID = "test-run-default"

// Option configures a scenario run.
type Option func(*options)

type options struct {
	store  *store.Store
	runIDs trace.RunIDGenerator
	logger *slog.Logger
}

// WithStore persists the run, its trace and its final view to st.
func WithStore(st *store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithRunIDGenerator draws the run id from gen when the scenario has none.
func WithRunIDGenerator(gen trace.RunIDGenerator) Option {
	return func(o *options) {
		o.runIDs = gen
	}
}

// WithLogger sets the logger handed to the source and the view. Defaults
// to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Harness holds the collections and recorder of one scenario run.
type Harness struct {
	src    *binding.List[record.Object]
	view   *filtered.List[record.Object]
	rec    *trace.Recorder
	fields []string
	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Execution flow:
//  1. Build the source from the scenario records and attach the recorder
//  2. Create the view and attach the recorder to it
//  3. Execute steps, checking expected errors
//  4. Snapshot the view and evaluate assertions
//  5. Persist the run when a store is configured
//
// Step failures and failed assertions are reported in the result; an error
// is returned only when the scenario cannot be set up or persisted.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	runID := scenario.RunID
	if runID == "" {
		runID = DefaultRunID
		if o.runIDs != nil {
			runID = o.runIDs.Generate()
		}
	}

	h, err := newHarness(scenario, runID, o.logger)
	if err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult(runID)
	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	result.Trace = h.rec.Events()
	result.View = h.snapshot()
	result.SourceLen = h.src.Len()
	result.Filter = h.describeFilter()
	if result.Digest, err = trace.Digest(result.Trace); err != nil {
		return nil, fmt.Errorf("digest trace: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.view) {
		result.AddError(msg)
	}

	if o.store != nil {
		if err := persist(context.Background(), o.store, scenario.Name, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func newHarness(scenario *Scenario, runID string, logger *slog.Logger) (*Harness, error) {
	items := make([]record.Object, 0, len(scenario.Source))
	for i, m := range scenario.Source {
		obj, err := record.FromMap(m)
		if err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		items = append(items, obj)
	}

	h := &Harness{fields: scenario.Fields, logger: logger}
	listOpts := []binding.Option[record.Object]{
		binding.WithNewItem(h.blank),
		binding.WithLogger[record.Object](logger),
	}
	if len(scenario.Fields) > 0 {
		listOpts = append(listOpts, binding.WithFields[record.Object](scenario.Fields...))
	}
	h.src = binding.NewList(items, listOpts...)

	// Attached ahead of the view so each source event precedes the view
	// events it causes.
	h.rec = trace.NewRecorder(runID, trace.NewClock())
	h.rec.Attach(trace.OriginSource, h.src, h.src)

	h.view = filtered.New[record.Object](h.src, filtered.WithLogger(logger))
	h.rec.Attach(trace.OriginView, h.view, h.view)
	return h, nil
}

func (h *Harness) close() {
	h.rec.Detach()
	h.view.Close()
}

// blank creates the element added by add_new: every schema field null.
func (h *Harness) blank() record.Object {
	obj := make(record.Object, len(h.fields))
	for _, f := range h.src.FieldNames() {
		obj[f] = record.Null{}
	}
	return obj
}

// executeStep runs one step and records unexpected outcomes on result.
// Invariant faults raised by the view are caught and reported as step
// failures.
func (h *Harness) executeStep(i int, step Step, result *Result) {
	err := h.apply(step, result)

	if step.ExpectError != "" {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s error, got none", i, step.Op, step.ExpectError))
		case !matchesErrorKind(err, step.ExpectError):
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s error, got: %v", i, step.Op, step.ExpectError, err))
		}
		return
	}
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Op, err))
	}
}

func (h *Harness) apply(step Step, result *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var inv *filtered.InvariantError
			if e, ok := r.(error); ok && errors.As(e, &inv) {
				err = inv
				return
			}
			panic(r)
		}
	}()

	h.logger.Debug("executing step", "op", step.Op)

	switch step.Op {
	case OpApplyFilter:
		h.view.SetFilterProvider(predicateFor(step.Predicate))
		return h.view.ApplyFilter(step.Field, step.Value)
	case OpRemoveFilter:
		h.view.RemoveFilter()
		return nil
	case OpRefresh:
		return h.view.Refresh()

	case OpSourceAppend:
		obj, err := record.FromMap(step.Item)
		if err != nil {
			return err
		}
		_, err = h.src.Append(obj)
		return err
	case OpSourceInsert:
		obj, err := record.FromMap(step.Item)
		if err != nil {
			return err
		}
		return h.src.Insert(*step.Index, obj)
	case OpSourceSet:
		obj, err := record.FromMap(step.Item)
		if err != nil {
			return err
		}
		return h.src.Set(*step.Index, obj)
	case OpSourceRemove:
		return h.src.RemoveAt(*step.Index)
	case OpSourceReset:
		h.src.ResetBindings()
		return nil
	case OpSourceResetItem:
		return h.src.ResetItem(*step.Index)
	case OpSourceAddField:
		return h.src.AddField(step.Field)
	case OpSourceRemoveField:
		return h.src.RemoveField(step.Field)

	case OpViewAppend:
		obj, err := record.FromMap(step.Item)
		if err != nil {
			return err
		}
		_, err = h.view.Append(obj)
		return err
	case OpViewInsert:
		obj, err := record.FromMap(step.Item)
		if err != nil {
			return err
		}
		return h.view.Insert(*step.Index, obj)
	case OpViewSet:
		obj, err := record.FromMap(step.Item)
		if err != nil {
			return err
		}
		return h.view.Set(*step.Index, obj)
	case OpViewRemove:
		return h.view.RemoveAt(*step.Index)
	case OpViewClear:
		return h.view.Clear()

	case OpAddNew:
		_, err := h.view.AddNewBlank()
		return err
	case OpCancelNew:
		return h.view.CancelNewBlank()
	case OpEndNew:
		h.view.EndNewBlank()
		return nil

	case OpApplySort:
		dir := binding.Ascending
		if step.Direction == "desc" {
			dir = binding.Descending
		}
		return h.view.ApplySort(step.Field, dir)
	case OpRemoveSort:
		return h.view.RemoveSort()
	case OpFind:
		pos, err := h.view.Find(step.Field, step.Value)
		if err != nil {
			return err
		}
		result.Finds = append(result.Finds, pos)
		return nil

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func predicateFor(name string) filtered.Predicate {
	switch name {
	case "contains":
		return filtered.ContainsText
	case "equals":
		return filtered.Equals
	case "any_prefix":
		return filtered.AnyPrefix
	default:
		return filtered.DefaultPredicate
	}
}

func matchesErrorKind(err error, kind string) bool {
	switch kind {
	case ErrKindUnsupported:
		return filtered.IsUnsupported(err)
	case ErrKindOutOfRange:
		return errors.Is(err, binding.ErrIndexOutOfRange)
	case ErrKindNoPending:
		return errors.Is(err, filtered.ErrNoPendingItem)
	case ErrKindAny:
		return true
	default:
		return false
	}
}

func (h *Harness) snapshot() []store.ViewRow {
	rows := []store.ViewRow{}
	for i, obj := range h.view.All() {
		base, err := h.view.OriginalIndex(i)
		if err != nil {
			base = -1
		}
		rows = append(rows, store.ViewRow{Position: i, Base: base, Item: obj})
	}
	return rows
}

func (h *Harness) describeFilter() string {
	if !h.view.IsFiltered() {
		return ""
	}
	field, ok := h.view.ActiveFilterField()
	if !ok {
		field = "*"
	}
	return fmt.Sprintf("%s=%v", field, h.view.FilterValue())
}

// persist writes the run summary first; events and rows reference it.
func persist(ctx context.Context, st *store.Store, scenario string, result *Result) error {
	if err := st.WriteRun(ctx, result.Run(scenario)); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	if err := st.WriteEvents(ctx, result.Trace); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	if err := st.WriteView(ctx, result.RunID, result.View); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	return nil
}
