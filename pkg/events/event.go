// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"carvel.dev/clip/pkg/eval"
	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/markup"
	"carvel.dev/clip/pkg/virt"
)

type EventKind string

const (
	KindEvaluated EventKind = "Evaluated"
	KindError     EventKind = "Error"
)

type ErrorKind string

const (
	ErrorKindGraph ErrorKind = "Graph"
)

// Event is either *EvaluatedEvent or *ErrorEvent.
type Event interface {
	Kind() EventKind
	GetFilePath() string

	event()
}

type EvaluatedEvent struct {
	FilePath string
	Node     virt.Node
}

type ErrorEvent struct {
	// FilePath is the file whose evaluation was requested,
	// which may differ from where the failure is located.
	FilePath  string
	ErrorKind ErrorKind
	Info      GraphErrorInfo
}

var _ = []Event{&EvaluatedEvent{}, &ErrorEvent{}}

func (*EvaluatedEvent) Kind() EventKind { return KindEvaluated }
func (*ErrorEvent) Kind() EventKind     { return KindError }

func (e *EvaluatedEvent) GetFilePath() string { return e.FilePath }
func (e *ErrorEvent) GetFilePath() string     { return e.FilePath }

func (*EvaluatedEvent) event() {}
func (*ErrorEvent) event()     {}

func (e *ErrorEvent) Error() string {
	return fmt.Sprintf("%s (requested '%s')", e.Info.GetMessage(), e.FilePath)
}

func NewEvaluatedEvent(filePath string, node virt.Node) *EvaluatedEvent {
	return &EvaluatedEvent{FilePath: filePath, Node: node}
}

// NewErrorEvent classifies an error returned by the parser or evaluator.
// Any other error is a programming defect and panics.
func NewErrorEvent(filePath string, err error) *ErrorEvent {
	return &ErrorEvent{FilePath: filePath, ErrorKind: ErrorKindGraph, Info: NewGraphErrorInfo(err)}
}

type evaluatedEventJSON struct {
	Kind     EventKind `json:"kind"`
	FilePath string    `json:"file_path"`
	Node     virt.Node `json:"node"`
}

type errorEventJSON struct {
	Kind      EventKind      `json:"kind"`
	FilePath  string         `json:"file_path"`
	ErrorKind ErrorKind      `json:"error_kind"`
	Info      GraphErrorInfo `json:"info"`
}

var _ = []json.Marshaler{&EvaluatedEvent{}, &ErrorEvent{}}

func (e *EvaluatedEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(evaluatedEventJSON{KindEvaluated, e.FilePath, e.Node})
}

func (e *ErrorEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorEventJSON{KindError, e.FilePath, e.ErrorKind, e.Info})
}

type InfoKind string

const (
	InfoKindSyntax          InfoKind = "Syntax"
	InfoKindIncludeNotFound InfoKind = "IncludeNotFound"
	InfoKindNotFound        InfoKind = "NotFound"
	InfoKindRuntime         InfoKind = "Runtime"
)

// GraphErrorInfo describes why evaluation failed.
type GraphErrorInfo interface {
	Kind() InfoKind
	GetMessage() string

	info()
}

type SyntaxInfo struct {
	ParseErrorKind markup.ParseErrorKind `json:"parse_error_kind"`
	FilePath       string                `json:"file_path"`
	Message        string                `json:"message"`
	Location       filepos.Location      `json:"location"`
}

// IncludeNotFoundInfo describes an include that could not be evaluated
// (missing target, cycle or nesting limit). FilePath names the file holding
// the failing include, which for nested includes differs from the event's
// file; the unresolved file itself is in Target.
type IncludeNotFoundInfo struct {
	// FilePath is the file containing the include.
	FilePath string `json:"file_path"`
	// Target is the file the include refers to.
	Target   string           `json:"target"`
	Message  string           `json:"message"`
	Location filepos.Location `json:"location"`
}

type NotFoundInfo struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

type RuntimeInfo struct {
	FilePath string           `json:"file_path"`
	Message  string           `json:"message"`
	Location filepos.Location `json:"location"`
}

var _ = []GraphErrorInfo{&SyntaxInfo{}, &IncludeNotFoundInfo{}, &NotFoundInfo{}, &RuntimeInfo{}}

func (*SyntaxInfo) Kind() InfoKind          { return InfoKindSyntax }
func (*IncludeNotFoundInfo) Kind() InfoKind { return InfoKindIncludeNotFound }
func (*NotFoundInfo) Kind() InfoKind        { return InfoKindNotFound }
func (*RuntimeInfo) Kind() InfoKind         { return InfoKindRuntime }

func (i *SyntaxInfo) GetMessage() string          { return i.Message }
func (i *IncludeNotFoundInfo) GetMessage() string { return i.Message }
func (i *NotFoundInfo) GetMessage() string        { return i.Message }
func (i *RuntimeInfo) GetMessage() string         { return i.Message }

func (*SyntaxInfo) info()          {}
func (*IncludeNotFoundInfo) info() {}
func (*NotFoundInfo) info()        {}
func (*RuntimeInfo) info()         {}

func (i *SyntaxInfo) MarshalJSON() ([]byte, error) {
	type plain SyntaxInfo
	return marshalWithKind(InfoKindSyntax, (*plain)(i))
}

func (i *IncludeNotFoundInfo) MarshalJSON() ([]byte, error) {
	type plain IncludeNotFoundInfo
	return marshalWithKind(InfoKindIncludeNotFound, (*plain)(i))
}

func (i *NotFoundInfo) MarshalJSON() ([]byte, error) {
	type plain NotFoundInfo
	return marshalWithKind(InfoKindNotFound, (*plain)(i))
}

func (i *RuntimeInfo) MarshalJSON() ([]byte, error) {
	type plain RuntimeInfo
	return marshalWithKind(InfoKindRuntime, (*plain)(i))
}

// marshalWithKind emits {"kind": kind, ...fields of val}.
func marshalWithKind(kind InfoKind, val interface{}) ([]byte, error) {
	kindBs, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	valBs, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	result := append([]byte(`{"kind":`), kindBs...)
	if len(valBs) > 2 {
		result = append(result, ',')
	}
	return append(result, valBs[1:]...), nil
}

// NewGraphErrorInfo maps parser and evaluator errors to their wire form.
func NewGraphErrorInfo(err error) GraphErrorInfo {
	var (
		syntaxErr          *markup.SyntaxError
		includeNotFoundErr *eval.IncludeNotFoundError
		notFoundErr        *eval.NotFoundError
		runtimeErr         *eval.RuntimeError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return &SyntaxInfo{
			ParseErrorKind: syntaxErr.Kind,
			FilePath:       syntaxErr.FilePath,
			Message:        syntaxErr.Message,
			Location:       syntaxErr.Location,
		}
	case errors.As(err, &includeNotFoundErr):
		return &IncludeNotFoundInfo{
			FilePath: includeNotFoundErr.FilePath,
			Target:   includeNotFoundErr.Target,
			Message:  includeNotFoundErr.Message,
			Location: includeNotFoundErr.Location,
		}
	case errors.As(err, &notFoundErr):
		return &NotFoundInfo{FilePath: notFoundErr.FilePath, Message: notFoundErr.Error()}
	case errors.As(err, &runtimeErr):
		return &RuntimeInfo{
			FilePath: runtimeErr.FilePath,
			Message:  runtimeErr.Message,
			Location: runtimeErr.Location,
		}
	default:
		panic(fmt.Sprintf("unknown evaluation error type %T: %s", err, err))
	}
}
