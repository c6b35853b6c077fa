// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package events_test

import (
	"sync"
	"testing"

	"carvel.dev/clip/pkg/events"
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

func (r *recorder) filePaths() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	var result []string
	for _, event := range r.events {
		result = append(result, event.GetFilePath())
	}
	return result
}

func evaluated(filePath string) events.Event {
	return events.NewEvaluatedEvent(filePath, &virt.Fragment{})
}

func TestEmitterDeliversToMatchingSubscribers(t *testing.T) {
	emitter := events.NewEmitter()
	defer emitter.Close()

	aRec, allRec := &recorder{}, &recorder{}

	aSub, err := emitter.Subscribe("a", aRec.handle)
	require.NoError(t, err)
	allSub, err := emitter.Subscribe(events.AllFiles, allRec.handle)
	require.NoError(t, err)
	assert.NotEqual(t, aSub.ID, allSub.ID)
	assert.Len(t, aSub.ID, 36)

	emitter.Publish(evaluated("a"))
	emitter.Publish(evaluated("b"))
	emitter.Publish(evaluated("a"))
	emitter.Flush()

	assert.Equal(t, []string{"a", "a"}, aRec.filePaths())
	assert.Equal(t, []string{"a", "b", "a"}, allRec.filePaths())
}

func TestEmitterPreservesOrderAndDoesNotDrop(t *testing.T) {
	emitter := events.NewEmitter()

	rec := &recorder{}
	release := make(chan struct{})

	_, err := emitter.Subscribe(events.AllFiles, func(event events.Event) {
		<-release
		rec.handle(event)
	})
	require.NoError(t, err)

	var expected []string
	for i := 0; i < 500; i++ {
		filePath := string(rune('a' + i%26))
		expected = append(expected, filePath)
		// Handler is blocked; publishing must not block.
		emitter.Publish(evaluated(filePath))
	}
	close(release)

	emitter.Close()
	assert.Equal(t, expected, rec.filePaths())
}

func TestEmitterDoesNotReplay(t *testing.T) {
	emitter := events.NewEmitter()
	defer emitter.Close()

	emitter.Publish(evaluated("a"))

	rec := &recorder{}
	_, err := emitter.Subscribe("a", rec.handle)
	require.NoError(t, err)

	emitter.Flush()
	assert.Empty(t, rec.filePaths())
}

func TestEmitterUnsubscribe(t *testing.T) {
	emitter := events.NewEmitter()
	defer emitter.Close()

	rec := &recorder{}
	sub, err := emitter.Subscribe("a", rec.handle)
	require.NoError(t, err)

	emitter.Publish(evaluated("a"))
	assert.True(t, emitter.Unsubscribe(sub))
	assert.False(t, emitter.Unsubscribe(sub))
	assert.Equal(t, 0, emitter.Len())

	emitter.Publish(evaluated("a"))
	emitter.Flush()
	assert.Equal(t, []string{"a"}, rec.filePaths())
}

func TestEmitterSubscribeValidation(t *testing.T) {
	emitter := events.NewEmitter()

	_, err := emitter.Subscribe("", func(events.Event) {})
	require.Error(t, err)

	_, err = emitter.Subscribe("a", nil)
	require.Error(t, err)

	_, err = emitter.Subscribe("a", func(events.Event) {}, events.WithProtocol(">= 2.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected protocol version to satisfy '>= 2.0'")

	_, err = emitter.Subscribe("a", func(events.Event) {}, events.WithProtocol("~> 1.0"))
	require.NoError(t, err)

	emitter.Close()

	_, err = emitter.Subscribe("a", func(events.Event) {})
	require.Error(t, err)
	assert.Equal(t, "Expected emitter to be open, but it was closed", err.Error())
}
