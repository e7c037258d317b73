package tree

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/list"
)

var (
	ErrRBTreeRedViolation   = errors.New("rbtree red violation")
	ErrRBTreeBlackViolation = errors.New("rbtree black violation")
	ErrRBTreeRootViolation  = errors.New("rbtree root is not black")
	ErrRBTreeOrderViolation = errors.New("rbtree order violation")
	ErrRBTreeLinkViolation  = errors.New("rbtree parent link violation")
	ErrRBTreeSizeViolation  = errors.New("rbtree size mismatch")
)

func isBlack[E any](node RBNode[E]) bool {
	return node == nil || node.Color() == Black
}

func isRed[E any](node RBNode[E]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[E any](target, to RBNode[E]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlack[E](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// preorder visits every node once. It stops at the first false.
func preorder[E any](tree RBTree[E], action func(node RBNode[E]) bool) {
	root := tree.Root()
	if root == nil {
		return
	}
	stack := list.NewSimpleStack[RBNode[E]](root)
	defer stack.Release()
	for aux, ok := stack.Pop(); ok; aux, ok = stack.Pop() {
		if !action(aux) {
			return
		}
		if r := aux.Right(); r != nil {
			stack.Push(r)
		}
		if l := aux.Left(); l != nil {
			stack.Push(l)
		}
	}
}

func RootColorValidate[E any](tree RBTree[E]) error {
	if isRed[E](tree.Root()) {
		return ErrRBTreeRootViolation
	}
	return nil
}

// RedViolationValidate checks that no red node has a red child.
func RedViolationValidate[E any](tree RBTree[E]) error {
	var err error
	preorder[E](tree, func(node RBNode[E]) bool {
		if isRed[E](node) && (isRed[E](node.Left()) || isRed[E](node.Right())) {
			err = ErrRBTreeRedViolation
			return false
		}
		return true
	})
	return err
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each node owning a nil leaf has the same black depth to the root.
*/
func BlackViolationValidate[E any](tree RBTree[E]) error {
	depth := -1
	var err error
	preorder[E](tree, func(node RBNode[E]) bool {
		if node.Left() != nil && node.Right() != nil {
			return true
		}
		d := blackDepthTo[E](node, nil)
		if depth < 0 {
			depth = d
		} else if d != depth {
			err = ErrRBTreeBlackViolation
			return false
		}
		return true
	})
	return err
}

// OrderViolationValidate checks the in-order sequence is strictly
// increasing by the cmp and the count of elements equals the Len.
func OrderViolationValidate[E any](tree RBTree[E], cmp infra.Comparator[E]) error {
	var (
		prev  E
		count int64
	)
	for val := range tree.All() {
		if count > 0 && cmp(prev, val) >= 0 {
			return ErrRBTreeOrderViolation
		}
		prev = val
		count++
	}
	if count != tree.Len() {
		return ErrRBTreeSizeViolation
	}
	return nil
}

// ParentLinkValidate checks every child points back to its parent.
func ParentLinkValidate[E any](tree RBTree[E]) error {
	if root := tree.Root(); root != nil && root.Parent() != nil {
		return ErrRBTreeLinkViolation
	}
	var err error
	preorder[E](tree, func(node RBNode[E]) bool {
		if l := node.Left(); l != nil && l.Parent() != node {
			err = ErrRBTreeLinkViolation
			return false
		}
		if r := node.Right(); r != nil && r.Parent() != node {
			err = ErrRBTreeLinkViolation
			return false
		}
		return true
	})
	return err
}

// Validate runs all the validators and combines their errors.
func Validate[E any](tree RBTree[E], cmp infra.Comparator[E]) error {
	return multierr.Combine(
		RootColorValidate[E](tree),
		RedViolationValidate[E](tree),
		BlackViolationValidate[E](tree),
		OrderViolationValidate[E](tree, cmp),
		ParentLinkValidate[E](tree),
	)
}
