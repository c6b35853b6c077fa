// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/eval"
	"carvel.dev/clip/pkg/events"
	"carvel.dev/clip/pkg/graph"
	"github.com/k14s/starlark-go/starlark"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Resolver maps include srcs to graph keys; nil resolves relative to the including file.
	Resolver graph.PathResolver
	// Globals are made available to slot expressions.
	Globals starlark.StringDict
	// MaxDepth limits include nesting; zero means eval.DefaultMaxDepth.
	MaxDepth int
	// Parallelism bounds EvaluateAll; zero means number of CPUs.
	Parallelism int
}

// Engine serializes graph mutations with a single lock. Evaluations
// run against snapshots taken under that lock.
type Engine struct {
	lock    sync.RWMutex
	graph   *graph.Graph
	emitter *events.Emitter
	opts    Options
	ui      ui.UI
}

func New(opts Options, ui ui.UI) *Engine {
	return &Engine{
		graph:   graph.NewGraph(opts.Resolver),
		emitter: events.NewEmitter(),
		opts:    opts,
		ui:      ui,
	}
}

// LoadOrUpdate parses text as filePath's new content. If it does not parse,
// the previously loaded content is kept and a single Syntax error event is
// produced. Otherwise filePath and everything that includes it is re-evaluated,
// filePath first and each file after the files it includes.
func (e *Engine) LoadOrUpdate(filePath, text string) []events.Event {
	defer ui.DebugTimer(e.ui, fmt.Sprintf("load %s", filePath))()

	e.lock.Lock()
	defer e.lock.Unlock()

	err := e.graph.Upsert(filePath, text)
	if err != nil {
		e.ui.Debugf("load %s: %s\n", filePath, err)
		event := events.NewErrorEvent(filePath, err)
		e.emitter.Publish(event)
		return []events.Event{event}
	}

	return e.cascade(filePath)
}

// Unload removes filePath and re-evaluates it along with its dependents.
// filePath itself yields a NotFound error event.
func (e *Engine) Unload(filePath string) []events.Event {
	defer ui.DebugTimer(e.ui, fmt.Sprintf("unload %s", filePath))()

	e.lock.Lock()
	defer e.lock.Unlock()

	if !e.graph.Remove(filePath) {
		e.ui.Debugf("unload %s: was not loaded\n", filePath)
	}

	return e.cascade(filePath)
}

// cascade must be called with the write lock held so that events for
// a file are published in the order its changes were made.
func (e *Engine) cascade(filePath string) []events.Event {
	affected := e.graph.DependentsClosure(filePath)
	e.ui.Debugf("cascade %s: %s\n", filePath, strings.Join(affected, ", "))

	evaluator := e.evaluator(e.graph.Snapshot())

	var result []events.Event
	for _, affectedPath := range affected {
		event, _ := e.evaluate(context.Background(), evaluator, affectedPath)
		e.emitter.Publish(event)
		result = append(result, event)
	}
	return result
}

// Evaluate evaluates filePath against the current graph and publishes the result.
func (e *Engine) Evaluate(filePath string) events.Event {
	e.lock.RLock()
	defer e.lock.RUnlock()

	event, _ := e.evaluate(context.Background(), e.evaluator(e.graph.Snapshot()), filePath)
	e.emitter.Publish(event)
	return event
}

// EvaluateAll evaluates every loaded file in parallel and returns events
// sorted by file path. Cancelling ctx stops evaluation between nodes;
// files fully evaluated before that still have their events published.
func (e *Engine) EvaluateAll(ctx context.Context) ([]events.Event, error) {
	defer ui.DebugTimer(e.ui, "evaluate all")()

	e.lock.RLock()
	defer e.lock.RUnlock()

	snapshot := e.graph.Snapshot()
	evaluator := e.evaluator(snapshot)
	filePaths := snapshot.FilePaths()
	result := make([]events.Event, len(filePaths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.parallelism())

	for i, filePath := range filePaths {
		i, filePath := i, filePath

		group.Go(func() error {
			event, err := e.evaluate(groupCtx, evaluator, filePath)
			if err != nil {
				return err
			}
			e.emitter.Publish(event)
			result[i] = event
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Subscribe registers handler for events of filePath (or events.AllFiles).
func (e *Engine) Subscribe(filePath string, handler events.Handler, opts ...events.SubscribeOpt) (*events.Subscription, error) {
	return e.emitter.Subscribe(filePath, handler, opts...)
}

func (e *Engine) Unsubscribe(sub *events.Subscription) bool {
	return e.emitter.Unsubscribe(sub)
}

// Flush waits until subscribers handled every published event.
func (e *Engine) Flush() { e.emitter.Flush() }

// Close delivers pending events and stops all subscriptions.
func (e *Engine) Close() { e.emitter.Close() }

// Has reports whether filePath is loaded.
func (e *Engine) Has(filePath string) bool {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.graph.Has(filePath)
}

// Snapshot returns the current state of the graph.
func (e *Engine) Snapshot() *graph.Snapshot {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.graph.Snapshot()
}

func (e *Engine) evaluator(snapshot *graph.Snapshot) *eval.Evaluator {
	return eval.NewEvaluator(snapshot, eval.EvaluatorOpts{
		Globals:  e.opts.Globals,
		MaxDepth: e.opts.MaxDepth,
	})
}

// evaluate returns an error only when ctx is done before filePath was evaluated.
func (e *Engine) evaluate(ctx context.Context, evaluator *eval.Evaluator, filePath string) (events.Event, error) {
	node, err := evaluator.EvaluateContext(ctx, filePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.ui.Debugf("evaluate %s: %s\n", filePath, err)
		return events.NewErrorEvent(filePath, err), nil
	}
	return events.NewEvaluatedEvent(filePath, node), nil
}

func (e *Engine) parallelism() int {
	if e.opts.Parallelism > 0 {
		return e.opts.Parallelism
	}
	return runtime.NumCPU()
}
