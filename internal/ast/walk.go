package ast

// Walk visits n and every node beneath it in preorder. Returning false
// from visit prunes the subtree. Call arguments are visited; the called
// definition is not, it is a separate tree.
func Walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	switch n := n.(type) {
	case *Kernel:
		for _, p := range n.Params {
			Walk(p, visit)
		}
		Walk(n.Body, visit)
	case *ExternDecl:
		for _, p := range n.Params {
			Walk(p, visit)
		}
	case *Block:
		for _, s := range n.Stmts {
			Walk(s, visit)
		}
		if n.Result != nil {
			Walk(n.Result, visit)
		}
	case *Let:
		Walk(n.Init, visit)
	case *Assign:
		Walk(n.Lhs, visit)
		Walk(n.Rhs, visit)
	case *ExprStmt:
		Walk(n.X, visit)
	case *Binary:
		Walk(n.Lhs, visit)
		Walk(n.Rhs, visit)
	case *Unary:
		Walk(n.X, visit)
	case *If:
		Walk(n.Cond, visit)
		Walk(n.Then, visit)
		Walk(n.Else, visit)
	case *Match:
		Walk(n.Scrut, visit)
		for _, arm := range n.Arms {
			Walk(arm.Body, visit)
		}
	case *TupleExpr:
		for _, it := range n.Items {
			Walk(it, visit)
		}
	case *ArrayExpr:
		for _, it := range n.Items {
			Walk(it, visit)
		}
	case *Repeat:
		Walk(n.Value, visit)
	case *StructExpr:
		for _, f := range n.Fields {
			Walk(f.Value, visit)
		}
		if n.Rest != nil {
			Walk(n.Rest, visit)
		}
	case *EnumExpr:
		if n.Payload != nil {
			Walk(n.Payload, visit)
		}
	case *FieldAccess:
		Walk(n.Base, visit)
	case *IndexAccess:
		Walk(n.Base, visit)
		if n.Dyn != nil {
			Walk(n.Dyn, visit)
		}
	case *Call:
		for _, a := range n.Args {
			Walk(a, visit)
		}
	case *AsBits:
		Walk(n.X, visit)
	case *AsSigned:
		Walk(n.X, visit)
	}
}
