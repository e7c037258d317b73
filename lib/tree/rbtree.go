package tree

import (
	"iter"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/list"
)

type rbNode[E any] struct {
	parent *rbNode[E]
	left   *rbNode[E]
	right  *rbNode[E]
	val    E
	color  RBColor
}

func (node *rbNode[E]) Color() RBColor {
	return node.color
}

func (node *rbNode[E]) Val() E {
	return node.val
}

func (node *rbNode[E]) Left() RBNode[E] {
	if node.isNilLeaf() || node.left.isNilLeaf() {
		return nil
	}
	return node.left
}

func (node *rbNode[E]) Right() RBNode[E] {
	if node.isNilLeaf() || node.right.isNilLeaf() {
		return nil
	}
	return node.right
}

func (node *rbNode[E]) Parent() RBNode[E] {
	if node.isNilLeaf() || node.parent.isNilLeaf() {
		return nil
	}
	return node.parent
}

// Every linked node points its children to the nil leaf (sentinel) instead
// of nil, so only the sentinel and the unlinked nodes have no left child.
func (node *rbNode[E]) isNilLeaf() bool {
	return node == nil || node.left == nil
}

func (node *rbNode[E]) isRed() bool {
	return !node.isNilLeaf() && node.color == Red
}

func (node *rbNode[E]) isBlack() bool {
	return node.isNilLeaf() || node.color == Black
}

func (node *rbNode[E]) isRoot() bool {
	return !node.isNilLeaf() && node.parent.isNilLeaf()
}

func (node *rbNode[E]) Direction() RBDirection {
	if node.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[E]) child(dir RBDirection) *rbNode[E] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] unknown child direction")
}

func (node *rbNode[E]) sibling() *rbNode[E] {
	switch dir := node.Direction(); dir {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[E]) uncle() *rbNode[E] {
	return node.parent.sibling()
}

func (node *rbNode[E]) grandpa() *rbNode[E] {
	return node.parent.parent
}

func (node *rbNode[E]) minimum() *rbNode[E] {
	aux := node
	for ; !aux.isNilLeaf() && !aux.left.isNilLeaf(); aux = aux.left {
	}
	return aux
}

func (node *rbNode[E]) maximum() *rbNode[E] {
	aux := node
	for ; !aux.isNilLeaf() && !aux.right.isNilLeaf(); aux = aux.right {
	}
	return aux
}

func opposite(dir RBDirection) RBDirection {
	return -dir
}

type rbTree[E any] struct {
	root    *rbNode[E]
	nilLeaf *rbNode[E]
	cmp     infra.Comparator[E]
	count   int64
	isDesc  bool
}

func (tree *rbTree[E]) compare(v1, v2 E) int64 {
	if !tree.isDesc {
		return tree.cmp(v1, v2)
	}
	return tree.cmp(v2, v1)
}

func (tree *rbTree[E]) Len() int64 {
	return tree.count
}

func (tree *rbTree[E]) Root() RBNode[E] {
	if tree.root.isNilLeaf() {
		return nil
	}
	return tree.root
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// Introduction to Algorithms (CLRS), chapter 13.
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// p6. Left subtree elements < node element < right subtree elements.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[E]) leftRotate(x *rbNode[E]) {
	if x.isNilLeaf() || x.right.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := x.right
	dir := x.Direction()
	x.right = y.left
	if !y.left.isNilLeaf() {
		y.left.parent = x
	}
	y.parent = x.parent
	switch dir {
	case Root:
		tree.root = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.left = x
	x.parent = y
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[E]) rightRotate(x *rbNode[E]) {
	if x.isNilLeaf() || x.left.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := x.left
	dir := x.Direction()
	x.left = y.right
	if !y.right.isNilLeaf() {
		y.right.parent = x
	}
	y.parent = x.parent
	switch dir {
	case Root:
		tree.root = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.right = x
	x.parent = y
}

// rotate moves x down to the dir side.
func (tree *rbTree[E]) rotate(x *rbNode[E], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown rotate direction")
	}
}

// search descends from the root. It returns the node holding an equal
// element, or the last visited node (nil leaf if the tree is empty).
func (tree *rbTree[E]) search(val E) (*rbNode[E], bool) {
	var last = tree.nilLeaf
	for aux := tree.root; !aux.isNilLeaf(); {
		res := tree.compare(val, aux.val)
		if /* equal */ res == 0 {
			return aux, true
		}
		last = aux
		if /* less */ res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return last, false
}

func (tree *rbTree[E]) Search(val E) (RBNode[E], bool) {
	node, ok := tree.search(val)
	if node.isNilLeaf() {
		return nil, false
	}
	return node, ok
}

func (tree *rbTree[E]) Contains(val E) bool {
	_, ok := tree.search(val)
	return ok
}

// i1: Empty rbtree, the new node becomes the root and is painted to black.
// i2: The parent is the root, nothing to fix.
// Otherwise, enter insertRebalance.
func (tree *rbTree[E]) Insert(val E) bool {
	y, found := tree.search(val)
	if found {
		return false
	}

	z := &rbNode[E]{
		val:    val,
		color:  Red,
		parent: y,
		left:   tree.nilLeaf,
		right:  tree.nilLeaf,
	}
	if /* i1 */ y.isNilLeaf() {
		tree.root = z
	} else if /* less */ tree.compare(val, y.val) < 0 {
		y.left = z
	} else /* greater */ {
		y.right = z
	}
	tree.count++

	if /* i1 */ z.parent.isNilLeaf() {
		z.color = Black
	} else if /* i2 */ !z.grandpa().isNilLeaf() {
		tree.insertRebalance(z)
	}
	return true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: The parent P and the uncle U are red, grandpa G is black.
(red-violation)
Repaint P and U into black and G into red.
G may be still red-violation with its parent, continue with G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to straighten the path.
Continue with P as X to enter im3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: The parent P is red, the uncle U is black and X is the same
direction as P. Repaint P into black, G into red, then rotate G to
the opposite direction. P turns to black, so the loop ends.

	    [G]                 [P]
	    / \    rotate(G)    / \
	  <P> [U]  ========>  <X> <G>
	  /                         \
	<X>                         [U]

The root is always repainted into black at the end.
*/
func (tree *rbTree[E]) insertRebalance(x *rbNode[E]) {
	for x.parent.isRed() {
		p, gp := x.parent, x.grandpa()
		pDir := p.Direction()
		if /* im1 */ u := x.uncle(); u.isRed() {
			p.color = Black
			u.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if /* im2 */ x.Direction() != pDir {
			x = p
			tree.rotate(x, pDir)
			p = x.parent
		}

		/* im3 */
		p.color = Black
		gp.color = Red
		tree.rotate(gp, opposite(pDir))
	}
	tree.root.color = Black
}

// transplant replaces the subtree rooted at u with the subtree rooted at v.
// The nil leaf parent is never written.
func (tree *rbTree[E]) transplant(u, v *rbNode[E]) {
	switch dir := u.Direction(); dir {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to transplant")
	}
	if !v.isNilLeaf() {
		v.parent = u.parent
	}
}

/*
r1: Current node Z has at most one child, splice Z out and replace it
with the child (or the nil leaf).

r2: Current node Z has left and right child.
Find Z's succ S (leftmost node of the right subtree) and relocate S
into Z's position. S inherits Z's color, so the black depth of Z's
position is kept. S's right child takes S's old position.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   move(S, Z)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..               Sr  ..
	   \
	   Sr

If the color of the physically removed position was black, the node that
took its place carries an extra black. Enter removeRebalance with it
(it may be the nil leaf, so its parent is passed along).
*/
func (tree *rbTree[E]) removeNode(z *rbNode[E]) {
	var (
		x, xParent *rbNode[E]
		rmColor    = z.color
	)
	if /* r1 */ z.left.isNilLeaf() {
		x, xParent = z.right, z.parent
		tree.transplant(z, z.right)
	} else if /* r1 */ z.right.isNilLeaf() {
		x, xParent = z.left, z.parent
		tree.transplant(z, z.left)
	} else /* r2 */ {
		y := z.right.minimum()
		rmColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			tree.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		tree.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if rmColor == Black {
		tree.removeRebalance(x, xParent)
	}

	// Unlink node
	z.parent, z.left, z.right = nil, nil, nil
	tree.count--
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black. S is X's sibling.
Sc is the same direction to X and it is X's sibling's child node (close nephew).
Sd is the opposite direction to X and it is X's sibling's child node (distant nephew).
The X is left child cases are drawn; the right child cases are mirrored
by the direction.

rm1: The sibling S is red, so the parent P, Sc and Sd must be black.
Repaint S into black and P into red, rotate P to X's direction.
The new sibling is black, continue with rm2, rm3 or rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  =====>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: The sibling S, Sc and Sd are black.
Repaint S into red, then the extra black moves up to P.
If P is red, the loop ends and P is painted to black.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: The sibling S is black, Sc is red and Sd is black.
Repaint Sc into black and S into red, rotate S to the opposite direction
of X. Enter rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: The sibling S is black and Sd is red.
S takes P's color, P and Sd are painted to black, rotate P to X's
direction. The extra black is absorbed, the loop ends.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]

X is always painted to black at the end.
*/
func (tree *rbTree[E]) removeRebalance(x, p *rbNode[E]) {
	for x != tree.root && x.isBlack() {
		dir := Right
		if x == p.left {
			dir = Left
		}

		sibling := p.child(opposite(dir))
		if /* rm1 */ sibling.isRed() {
			sibling.color = Black
			p.color = Red
			tree.rotate(p, dir)
			sibling = p.child(opposite(dir))
		}

		sc, sd := sibling.child(dir), sibling.child(opposite(dir))
		if /* rm2 */ sc.isBlack() && sd.isBlack() {
			sibling.color = Red
			x, p = p, p.parent
			continue
		}

		if /* rm3 */ sd.isBlack() {
			sc.color = Black
			sibling.color = Red
			tree.rotate(sibling, opposite(dir))
			sibling = p.child(opposite(dir))
			sd = sibling.child(opposite(dir))
		}

		/* rm4 */
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		tree.rotate(p, dir)
		x = tree.root
	}
	if !x.isNilLeaf() {
		x.color = Black
	}
}

func (tree *rbTree[E]) Delete(val E) bool {
	z, ok := tree.search(val)
	if !ok {
		return false
	}
	tree.removeNode(z)
	return true
}

func (tree *rbTree[E]) DeleteMin() (val E, ok bool) {
	if tree.root.isNilLeaf() {
		return val, false
	}
	_min := tree.root.minimum()
	val = _min.val
	tree.removeNode(_min)
	return val, true
}

func (tree *rbTree[E]) DeleteMax() (val E, ok bool) {
	if tree.root.isNilLeaf() {
		return val, false
	}
	_max := tree.root.maximum()
	val = _max.val
	tree.removeNode(_max)
	return val, true
}

func (tree *rbTree[E]) Min() RBNode[E] {
	if tree.root.isNilLeaf() {
		return nil
	}
	return tree.root.minimum()
}

func (tree *rbTree[E]) Max() RBNode[E] {
	if tree.root.isNilLeaf() {
		return nil
	}
	return tree.root.maximum()
}

// Inorder traversal to implement the DFS.
// Each call builds a fresh stack, so the traversal is restartable.
func (tree *rbTree[E]) inorder(reverse bool, action func(node *rbNode[E]) bool) {
	near, far := Left, Right
	if reverse {
		near, far = Right, Left
	}

	stack := list.NewSimpleStack[*rbNode[E]]()
	defer stack.Release()

	for aux := tree.root; ; {
		if !aux.isNilLeaf() {
			stack.Push(aux)
			aux = aux.child(near)
			continue
		}
		node, ok := stack.Pop()
		if !ok {
			return
		}
		if !action(node) {
			return
		}
		aux = node.child(far)
	}
}

func (tree *rbTree[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		tree.inorder(false, func(node *rbNode[E]) bool {
			return yield(node.val)
		})
	}
}

func (tree *rbTree[E]) Backward() iter.Seq[E] {
	return func(yield func(E) bool) {
		tree.inorder(true, func(node *rbNode[E]) bool {
			return yield(node.val)
		})
	}
}

func (tree *rbTree[E]) Foreach(action func(idx int64, color RBColor, val E) bool) {
	idx := int64(0)
	tree.inorder(false, func(node *rbNode[E]) bool {
		if !action(idx, node.color, node.val) {
			return false
		}
		idx++
		return true
	})
}

func (tree *rbTree[E]) Equal(other RBTree[E]) bool {
	if other == nil || tree.Len() != other.Len() {
		return false
	}
	for val := range tree.All() {
		if !other.Contains(val) {
			return false
		}
	}
	return true
}

func (tree *rbTree[E]) Clear() {
	tree.root = tree.nilLeaf
	tree.count = 0
}

// Release unlinks all the nodes iteratively, so the huge trees are
// able to be collected in pieces.
func (tree *rbTree[E]) Release() {
	aux := tree.root
	tree.Clear()
	if aux.isNilLeaf() {
		return
	}

	stack := list.NewSimpleStack[*rbNode[E]](aux)
	defer stack.Release()
	for node, ok := stack.Pop(); ok; node, ok = stack.Pop() {
		if !node.left.isNilLeaf() {
			stack.Push(node.left)
		}
		if !node.right.isNilLeaf() {
			stack.Push(node.right)
		}
		node.parent, node.left, node.right = nil, nil, nil
	}
}

type RBTreeOpt[E any] func(*rbTree[E])

func WithRBTreeDesc[E any]() RBTreeOpt[E] {
	return func(tree *rbTree[E]) {
		tree.isDesc = true
	}
}

func NewRBTree[E any](cmp infra.Comparator[E], opts ...RBTreeOpt[E]) RBTree[E] {
	if cmp == nil {
		panic("[rbtree] nil comparator")
	}
	nilLeaf := &rbNode[E]{color: Black}
	tree := &rbTree[E]{
		root:    nilLeaf,
		nilLeaf: nilLeaf,
		cmp:     cmp,
	}
	for _, o := range opts {
		o(tree)
	}
	return tree
}

func NewOrderedRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	return NewRBTree[K](infra.OrderedKeyCompare[K], opts...)
}
