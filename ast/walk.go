package ast

import "iter"

// Visitor defines the interface for tree traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// children returns the direct children of a node.
func children(node Node) []Instruction {
	switch n := node.(type) {
	case *Program:
		return n.Instructions
	case *Loop:
		return n.Body
	}
	return nil
}

// Walk traverses the tree in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk continues with
// visitor w for each of the children of node. Traversal uses an explicit
// stack, so nesting depth is not limited by the goroutine stack.
func Walk(v Visitor, node Node) {
	type item struct {
		node Node
		v    Visitor
	}
	stack := []item{{node: node, v: v}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		w := it.v.Visit(it.node)
		if w == nil {
			continue
		}
		kids := children(it.node)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, item{node: kids[i], v: w})
		}
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Preorder returns an iterator over all nodes of the tree in depth-first
// preorder. Stopping the iteration early is supported.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		stack := []Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			kids := children(n)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// Count returns the number of instructions in the tree, loops included.
func Count(root Node) int {
	var count int
	for n := range Preorder(root) {
		if _, ok := n.(Instruction); ok {
			count++
		}
	}
	return count
}

// Depth returns the maximum loop nesting depth of the tree.
func Depth(root Node) int {
	type item struct {
		node  Node
		depth int
	}
	var max int
	stack := []item{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		depth := it.depth
		if _, ok := it.node.(*Loop); ok {
			depth++
			if depth > max {
				max = depth
			}
		}
		for _, child := range children(it.node) {
			stack = append(stack, item{node: child, depth: depth})
		}
	}
	return max
}

// Equal reports whether two trees have the same shape and ops, ignoring
// source positions.
func Equal(a, b Node) bool {
	stack := [][2]Node{{a, b}}
	for len(stack) > 0 {
		pair := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch x := pair[0].(type) {
		case *Program:
			y, ok := pair[1].(*Program)
			if !ok || len(x.Instructions) != len(y.Instructions) {
				return false
			}
			for i := range x.Instructions {
				stack = append(stack, [2]Node{x.Instructions[i], y.Instructions[i]})
			}
		case *Loop:
			y, ok := pair[1].(*Loop)
			if !ok || len(x.Body) != len(y.Body) {
				return false
			}
			for i := range x.Body {
				stack = append(stack, [2]Node{x.Body[i], y.Body[i]})
			}
		case *Command:
			y, ok := pair[1].(*Command)
			if !ok || x.Op != y.Op {
				return false
			}
		default:
			if pair[0] != pair[1] {
				return false
			}
		}
	}
	return true
}
