// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"context"
	"fmt"
	"strings"

	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/graph"
	"carvel.dev/clip/pkg/markup"
	"carvel.dev/clip/pkg/orderedmap"
	"carvel.dev/clip/pkg/virt"
	"github.com/k14s/starlark-go/starlark"
)

const (
	// DefaultMaxDepth bounds include nesting when no limit is configured.
	DefaultMaxDepth = 256
)

type EvaluatorOpts struct {
	// Globals are visible to every slot expression.
	Globals starlark.StringDict
	// MaxDepth limits include nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

// Evaluator evaluates files held by a single graph snapshot.
// It is safe for concurrent use since snapshots are immutable.
type Evaluator struct {
	snapshot *graph.Snapshot
	opts     EvaluatorOpts
}

func NewEvaluator(snapshot *graph.Snapshot, opts EvaluatorOpts) *Evaluator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Evaluator{snapshot, opts}
}

// Evaluate produces the virtual tree for filePath. Returned errors are
// *NotFoundError, *IncludeNotFoundError or *RuntimeError.
func (e *Evaluator) Evaluate(filePath string) (virt.Node, error) {
	return e.EvaluateContext(context.Background(), filePath)
}

// EvaluateContext is Evaluate, stopping between nodes once ctx is done.
// In that case ctx.Err() is returned.
func (e *Evaluator) EvaluateContext(ctx context.Context, filePath string) (virt.Node, error) {
	if !e.snapshot.Has(filePath) {
		return nil, &NotFoundError{FilePath: filePath}
	}
	return e.evalFile(ctx, filePath, e.opts.Globals, nil)
}

func (e *Evaluator) evalFile(ctx context.Context, filePath string, env starlark.StringDict, stack []string) (virt.Node, error) {
	unit, found := e.snapshot.Unit(filePath)
	if !found {
		return nil, &NotFoundError{FilePath: filePath}
	}

	fileEval := &fileEvaluator{
		ctx:       ctx,
		evaluator: e,
		unit:      unit,
		env:       env,
		stack:     append(append([]string{}, stack...), filePath),
	}

	nodes, err := fileEval.evalNode(unit.Tree)
	if err != nil {
		return nil, err
	}

	if _, isFragment := unit.Tree.(*markup.Fragment); !isFragment && len(nodes) == 1 {
		return nodes[0], nil
	}
	return &virt.Fragment{Children: nodes, Source: fileEval.source(unit.Tree)}, nil
}

type fileEvaluator struct {
	ctx       context.Context
	evaluator *Evaluator
	unit      *graph.Unit
	env       starlark.StringDict
	stack     []string
}

// evalNode returns the virtual nodes that replace node in its parent.
// Fragments and includes may yield any number of nodes.
func (e *fileEvaluator) evalNode(node markup.Node) ([]virt.Node, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}

	switch typedNode := node.(type) {
	case *markup.Text:
		return []virt.Node{&virt.Text{Value: typedNode.Value, Source: e.source(node)}}, nil

	case *markup.Comment:
		return nil, nil

	case *markup.Slot:
		val, err := e.evalScript(typedNode.Script, typedNode.Position)
		if err != nil {
			return nil, err
		}
		if val == starlark.None {
			return nil, nil
		}
		return []virt.Node{&virt.Text{Value: stringify(val), Source: e.source(node)}}, nil

	case *markup.Fragment:
		return e.evalChildren(typedNode.Children)

	case *markup.Element:
		attrs, err := e.evalAttributes(typedNode.Attributes)
		if err != nil {
			return nil, err
		}
		children, err := e.evalChildren(typedNode.Children)
		if err != nil {
			return nil, err
		}
		return []virt.Node{&virt.Element{
			TagName:    typedNode.TagName,
			Attributes: attrs,
			Children:   children,
			Source:     e.source(node),
		}}, nil

	case *markup.Include:
		return e.evalInclude(typedNode)

	case *markup.Conditional:
		return e.evalConditional(typedNode)

	default:
		panic(fmt.Sprintf("unknown node type %T", typedNode))
	}
}

func (e *fileEvaluator) evalChildren(children []markup.Node) ([]virt.Node, error) {
	result := []virt.Node{}
	for _, child := range children {
		nodes, err := e.evalNode(child)
		if err != nil {
			return nil, err
		}
		result = append(result, nodes...)
	}
	return result, nil
}

func (e *fileEvaluator) evalInclude(include *markup.Include) ([]virt.Node, error) {
	edge, found := e.unit.EdgeFor(include)
	if !found {
		panic(fmt.Sprintf("Expected include at %s in '%s' to have an edge", include.Position.AsString(), e.unit.FilePath))
	}

	if !e.evaluator.snapshot.Has(edge.To) {
		return nil, e.includeErr(edge, fmt.Sprintf("Expected include '%s' to refer to a loaded file, but '%s' was not found", edge.Src, edge.To))
	}

	for i, filePath := range e.stack {
		if filePath == edge.To {
			cycle := append(append([]string{}, e.stack[i:]...), edge.To)
			return nil, e.includeErr(edge, fmt.Sprintf("Expected include '%s' to not be cyclic, but found cycle %s", edge.Src, strings.Join(cycle, " -> ")))
		}
	}

	if len(e.stack) >= e.evaluator.opts.MaxDepth {
		return nil, e.includeErr(edge, fmt.Sprintf("Expected include nesting to be at most %d levels deep, but '%s' exceeds it", e.evaluator.opts.MaxDepth, edge.Src))
	}

	env, err := e.includeEnv(include)
	if err != nil {
		return nil, err
	}

	result, err := e.evaluator.evalFile(e.ctx, edge.To, env, e.stack)
	if err != nil {
		return nil, err
	}

	if fragment, isFragment := result.(*virt.Fragment); isFragment {
		return fragment.Children, nil
	}
	return []virt.Node{result}, nil
}

// evalConditional yields the children of the first branch whose condition
// is truthy, or of the final else branch; nothing if no branch matches.
func (e *fileEvaluator) evalConditional(branch *markup.Conditional) ([]virt.Node, error) {
	for ; branch != nil; branch = branch.Else {
		if branch.IsElse() {
			return e.evalChildren(branch.Children)
		}
		val, err := e.evalScript(branch.Condition, branch.Position)
		if err != nil {
			return nil, err
		}
		if val.Truth() {
			return e.evalChildren(branch.Children)
		}
	}
	return nil, nil
}

// includeEnv extends the current globals with the include's attributes
// (other than src), so included files can refer to them by name.
func (e *fileEvaluator) includeEnv(include *markup.Include) (starlark.StringDict, error) {
	if include.Attributes.Len() <= 1 {
		return e.env, nil
	}

	env := starlark.StringDict{}
	for name, val := range e.env {
		env[name] = val
	}

	err := include.Attributes.IterateErr(func(name string, attr *markup.Attribute) error {
		if name == markup.IncludeSrcAttr {
			return nil
		}
		val, err := e.attributeValue(attr)
		if err != nil {
			return err
		}
		env[name] = val
		return nil
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (e *fileEvaluator) includeErr(edge graph.Edge, msg string) error {
	return &IncludeNotFoundError{
		FilePath: e.unit.FilePath,
		Target:   edge.To,
		Message:  msg,
		Location: edge.Location,
	}
}

// evalAttributes evaluates slot attributes. Slots resulting in None or
// False drop the attribute; True keeps it as a boolean attribute.
func (e *fileEvaluator) evalAttributes(attrs *markup.Attributes) (*virt.Attributes, error) {
	result := orderedmap.NewMap[string, string]()

	err := attrs.IterateErr(func(name string, attr *markup.Attribute) error {
		val, err := e.attributeValue(attr)
		if err != nil {
			return err
		}
		switch {
		case val == starlark.None || val == starlark.False:
			// omitted
		case val == starlark.True:
			result.Set(name, "")
		default:
			result.Set(name, stringify(val))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *fileEvaluator) attributeValue(attr *markup.Attribute) (starlark.Value, error) {
	switch attr.Kind {
	case markup.AttrBool:
		return starlark.True, nil
	case markup.AttrString:
		return starlark.String(attr.Value), nil
	case markup.AttrSlot:
		return e.evalScript(attr.Value, attr.Position)
	default:
		panic(fmt.Sprintf("unknown attribute kind %d", attr.Kind))
	}
}

func (e *fileEvaluator) evalScript(script string, loc filepos.Location) (starlark.Value, error) {
	expr, err := markup.ParseSlotExpr(e.unit.FilePath, script)
	if err != nil {
		return nil, e.runtimeErr(fmt.Sprintf("Parsing expression '%s': %s", script, err), loc)
	}

	thread := &starlark.Thread{Name: "slot=" + e.unit.FilePath}

	val, err := starlark.EvalExpr(thread, expr, e.env)
	if err != nil {
		return nil, e.runtimeErr(fmt.Sprintf("Evaluating expression '%s': %s", strings.TrimSpace(script), runtimeErrMsg(err)), loc)
	}
	return val, nil
}

func (e *fileEvaluator) runtimeErr(msg string, loc filepos.Location) error {
	return &RuntimeError{FilePath: e.unit.FilePath, Message: msg, Location: loc}
}

func (e *fileEvaluator) source(node markup.Node) virt.Source {
	return virt.Source{FilePath: e.unit.FilePath, Location: node.GetPosition()}
}

func runtimeErrMsg(err error) string {
	if evalErr, ok := err.(*starlark.EvalError); ok {
		return evalErr.Msg
	}
	return err.Error()
}

func stringify(val starlark.Value) string {
	if str, ok := starlark.AsString(val); ok {
		return str
	}
	return val.String()
}
