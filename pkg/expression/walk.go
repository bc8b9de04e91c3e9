// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expression

// Children returns the direct sub-expressions of e. The filter of an
// aggregate or window call comes after its arguments.
func Children(e Expression) []Expression {
	switch x := e.(type) {
	case *FuncExpr:
		return x.Args
	case *WindowFunc:
		if x.Filter != nil {
			return append(append(make([]Expression, 0, len(x.Args)+1), x.Args...), x.Filter)
		}
		return x.Args
	case *Aggref:
		if x.Filter != nil {
			return append(append(make([]Expression, 0, len(x.Args)+1), x.Args...), x.Filter)
		}
		return x.Args
	}
	return nil
}

// withChildren returns a shallow copy of e whose children are replaced.
func withChildren(e Expression, children []Expression) Expression {
	switch x := e.(type) {
	case *FuncExpr:
		c := *x
		c.Args = children
		return &c
	case *WindowFunc:
		c := *x
		c.Args, c.Filter = splitFilter(children, x.Filter != nil)
		return &c
	case *Aggref:
		c := *x
		c.Args, c.Filter = splitFilter(children, x.Filter != nil)
		return &c
	}
	return e
}

func splitFilter(children []Expression, hasFilter bool) ([]Expression, Expression) {
	if !hasFilter {
		return children, nil
	}
	n := len(children) - 1
	return children[:n:n], children[n]
}

// Walk visits e in pre-order. When visit returns false the children of the
// current node are skipped.
func Walk(e Expression, visit func(Expression) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, visit)
	}
}

// WalkAny returns true as soon as pred holds for a node of e.
func WalkAny(e Expression, pred func(Expression) bool) bool {
	found := false
	Walk(e, func(n Expression) bool {
		if found {
			return false
		}
		if pred(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// MutateFunc rewrites a node. Returning handled=true stops the descent and
// uses the returned expression in place of the node.
type MutateFunc func(e Expression) (res Expression, handled bool, err error)

// Mutate rewrites e bottom-up without modifying it. Unchanged sub-trees are
// shared between the input and the result.
func Mutate(e Expression, f MutateFunc) (Expression, error) {
	if e == nil {
		return nil, nil
	}
	res, handled, err := f(e)
	if err != nil || handled {
		return res, err
	}
	children := Children(e)
	var newChildren []Expression
	for i, c := range children {
		nc, err := Mutate(c, f)
		if err != nil {
			return nil, err
		}
		if nc != c && newChildren == nil {
			newChildren = make([]Expression, len(children))
			copy(newChildren, children[:i])
		}
		if newChildren != nil {
			newChildren[i] = nc
		}
	}
	if newChildren == nil {
		return e, nil
	}
	return withChildren(e, newChildren), nil
}
