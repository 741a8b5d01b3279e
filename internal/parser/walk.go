package parser

// Visitor is called for every node reached by Walk. Returning false skips
// the node's children.
type Visitor func(node any) bool

// Walk traverses statements and expressions depth-first, left to right, so
// leaves are visited in source order.
func Walk(node any, visit Visitor) {
	if node == nil || !visit(node) {
		return
	}
	switch n := node.(type) {
	case []Stmt:
		for _, s := range n {
			Walk(s, visit)
		}
	case *ExpressionStmt:
		Walk(n.Expr, visit)
	case *PrintStmt:
		Walk(n.Expr, visit)
	case *IfStmt:
		Walk(n.Condition, visit)
		Walk(n.Then, visit)
		if n.Else != nil {
			Walk(n.Else, visit)
		}
	case *Block:
		for _, s := range n.Statements {
			Walk(s, visit)
		}
	case *Assign:
		Walk(n.Value, visit)
	case *Unary:
		Walk(n.Operand, visit)
	case *Binary:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *Logical:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *Grouping:
		Walk(n.Inner, visit)
	}
}
