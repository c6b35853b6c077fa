// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package engine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/engine"
	"carvel.dev/clip/pkg/events"
	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/markup"
	"carvel.dev/clip/pkg/virt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	lock   sync.Mutex
	events []events.Event
}

func (r *recorder) handle(event events.Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) take() []events.Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := r.events
	r.events = nil
	return result
}

func newEngine(t *testing.T) (*engine.Engine, *recorder) {
	e := engine.New(engine.Options{}, ui.NoopUI{})
	t.Cleanup(e.Close)

	rec := &recorder{}
	_, err := e.Subscribe(events.AllFiles, rec.handle)
	require.NoError(t, err)
	return e, rec
}

func describe(evs []events.Event) []string {
	var result []string
	for _, ev := range evs {
		switch typedEv := ev.(type) {
		case *events.EvaluatedEvent:
			result = append(result, fmt.Sprintf("%s: %s", typedEv.FilePath, virt.NewPrinter(nil).PrintStr(typedEv.Node)))
		case *events.ErrorEvent:
			result = append(result, fmt.Sprintf("%s: %s", typedEv.FilePath, typedEv.Info.Kind()))
		default:
			panic(fmt.Sprintf("unknown event type %T", typedEv))
		}
	}
	return result
}

func TestLoadSimpleFile(t *testing.T) {
	e, rec := newEngine(t)

	evs := e.LoadOrUpdate("a", "<div>hi</div>")
	assert.Equal(t, []string{"a: <div>hi</div>"}, describe(evs))

	e.Flush()
	assert.Equal(t, evs, rec.take())
}

func TestUpdateCascadesToDependents(t *testing.T) {
	e, rec := newEngine(t)

	e.LoadOrUpdate("c", `<section><include src="a"/></section>`)
	e.LoadOrUpdate("a", `<b>one</b>`)
	e.LoadOrUpdate("unrelated", `<i/>`)
	e.Flush()
	assert.Equal(t, []string{
		"c: IncludeNotFound",
		"a: <b>one</b>",
		"c: <section><b>one</b></section>",
		"unrelated: <i/>",
	}, describe(rec.take()))

	evs := e.LoadOrUpdate("a", `<b>two</b>`)
	assert.Equal(t, []string{"a: <b>two</b>", "c: <section><b>two</b></section>"}, describe(evs))

	e.Flush()
	assert.Equal(t, evs, rec.take())
}

func TestCascadeOrdersIncludedBeforeIncluders(t *testing.T) {
	e, _ := newEngine(t)

	e.LoadOrUpdate("top", `<include src="mid"/><include src="base"/>`)
	e.LoadOrUpdate("mid", `<include src="base"/>`)
	e.LoadOrUpdate("base", `<p>x</p>`)

	evs := e.LoadOrUpdate("base", `<p>y</p>`)
	assert.Equal(t, []string{"base: <p>y</p>", "mid: <p>y</p>", "top: <p>y</p><p>y</p>"}, describe(evs))
}

func TestSyntaxErrorKeepsLastGoodContent(t *testing.T) {
	e, rec := newEngine(t)

	e.LoadOrUpdate("a", `<b>ok</b>`)
	e.LoadOrUpdate("c", `<include src="a"/>`)
	e.Flush()
	rec.take()

	evs := e.LoadOrUpdate("a", `<b>broken`)
	require.Len(t, evs, 1)

	errEv, ok := evs[0].(*events.ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "a", errEv.FilePath)
	assert.Equal(t, events.ErrorKindGraph, errEv.ErrorKind)

	info, ok := errEv.Info.(*events.SyntaxInfo)
	require.True(t, ok)
	assert.Equal(t, markup.EndOfFile, info.ParseErrorKind)
	assert.Equal(t, filepos.NewLocation(0, 10), info.Location)

	e.Flush()
	assert.Len(t, rec.take(), 1)

	assert.Equal(t, []string{"c: <b>ok</b>"}, describe([]events.Event{e.Evaluate("c")}))
}

func TestUnloadReportsIncludeNotFound(t *testing.T) {
	e, _ := newEngine(t)

	e.LoadOrUpdate("b", `<p>b</p>`)
	e.LoadOrUpdate("a", `<div><include src="b"/></div>`)

	evs := e.Unload("b")
	assert.Equal(t, []string{"b: NotFound", "a: IncludeNotFound"}, describe(evs))

	info := evs[1].(*events.ErrorEvent).Info.(*events.IncludeNotFoundInfo)
	assert.Equal(t, "a", info.FilePath)
	assert.Equal(t, "b", info.Target)
	assert.Equal(t, filepos.NewLocation(5, 23), info.Location)

	evs = e.LoadOrUpdate("b", `<p>back</p>`)
	assert.Equal(t, []string{"b: <p>back</p>", "a: <div><p>back</p></div>"}, describe(evs))
}

func TestEvaluateMissingInclude(t *testing.T) {
	e, _ := newEngine(t)

	e.LoadOrUpdate("a", `<include src="missing"/>`)

	ev, ok := e.Evaluate("a").(*events.ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "a", ev.FilePath)

	info, ok := ev.Info.(*events.IncludeNotFoundInfo)
	require.True(t, ok)
	assert.Equal(t, "missing", info.Target)
	assert.Equal(t, filepos.NewLocation(0, 24), info.Location)

	assert.Equal(t, []string{"nope: NotFound"}, describe([]events.Event{e.Evaluate("nope")}))
}

func TestCyclicIncludesTerminate(t *testing.T) {
	e, _ := newEngine(t)

	e.LoadOrUpdate("a", `<include src="b"/>`)
	evs := e.LoadOrUpdate("b", `<include src="a"/>`)

	assert.Equal(t, []string{"b: IncludeNotFound", "a: IncludeNotFound"}, describe(evs))
}

func TestEvaluateAll(t *testing.T) {
	e := engine.New(engine.Options{Parallelism: 2}, ui.NoopUI{})
	defer e.Close()

	for i := 0; i < 20; i++ {
		e.LoadOrUpdate(fmt.Sprintf("f%02d", i), fmt.Sprintf(`<p>%d</p>`, i))
	}

	evs, err := e.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 20)
	assert.Equal(t, "f00: <p>0</p>", describe(evs[:1])[0])
	assert.Equal(t, "f19: <p>19</p>", describe(evs[19:])[0])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.EvaluateAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentUpdatesAndEvaluations(t *testing.T) {
	e, _ := newEngine(t)

	e.LoadOrUpdate("shared", `<p>0</p>`)
	e.LoadOrUpdate("page", `<include src="shared"/>`)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			e.LoadOrUpdate("shared", fmt.Sprintf(`<p>%d</p>`, i))
		}(i)
		go func() {
			defer wg.Done()
			_, ok := e.Evaluate("page").(*events.EvaluatedEvent)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, e.Snapshot().Len())
}

func TestCascadeReachesIncludesInsideConditionals(t *testing.T) {
	e, _ := newEngine(t)

	e.LoadOrUpdate("part", `<b>1</b>`)
	e.LoadOrUpdate("page", `{#if True}<include src="part"/>{/else}<i/>{/}`)

	evs := e.LoadOrUpdate("part", `<b>2</b>`)
	assert.Equal(t, []string{"part: <b>2</b>", "page: <b>2</b>"}, describe(evs))
}
