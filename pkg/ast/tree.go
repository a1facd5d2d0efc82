package ast

import (
	"fmt"
	"strconv"
	"strings"

	tp "github.com/xlab/treeprint"
)

// TypeString renders a type expression the way diagnostics print it.
func TypeString(t TypeExpression) string {
	switch n := t.(type) {
	case nil:
		return "_"
	case *SimpleTypeExpression:
		if n.Name == nil {
			return "_"
		}
		return n.Name.Name
	case *FunctionTypeExpression:
		parts := make([]string, 0, len(n.ParamTypes))
		for _, p := range n.ParamTypes {
			parts = append(parts, TypeString(p))
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + TypeString(n.ReturnType)
	default:
		return string(t.NodeType())
	}
}

// Tree renders a node and its children as an indented tree for debugging
// output and test logs.
func Tree(node Node) string {
	if node == nil {
		return "<nil>\n"
	}
	printer := tp.NewWithRoot(label(node))
	addChildren(printer, node)
	return printer.String()
}

func label(node Node) string {
	switch n := node.(type) {
	case *Module:
		if n.Name != "" {
			return "Module " + n.Name
		}
		return "Module"
	case *TypeDeclaration:
		return fmt.Sprintf("%s %s", n.Kind, n.Name())
	case *VariantDeclaration:
		s := identName(n.ID) + " " + string(n.Representation)
		if n.AsSize != nil {
			s += " asSize=" + strconv.FormatUint(*n.AsSize, 10)
		}
		if len(n.Fields) > 0 {
			fields := make([]string, 0, len(n.Fields))
			for _, f := range n.Fields {
				fields = append(fields, TypeString(f))
			}
			s += " (" + strings.Join(fields, ", ") + ")"
		}
		return s
	case *ValueDeclaration:
		return "val " + identName(n.ID)
	case *Identifier:
		return "var " + n.Name
	case *UnitLiteral:
		return "()"
	case *IntegerLiteral:
		if n.Unsigned {
			return strconv.FormatInt(n.Value, 10) + "u"
		}
		return strconv.FormatInt(n.Value, 10)
	case *FloatLiteral:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *CharLiteral:
		return strconv.QuoteRune(n.Value)
	case *StringLiteral:
		return strconv.Quote(n.Value)
	case *ConstructorRef:
		return "ctor " + identName(n.TypeName) + "." + identName(n.Variant)
	case *FunctionExpression:
		params := make([]string, 0, len(n.Params))
		for _, p := range n.Params {
			if p == nil {
				continue
			}
			if p.ParamType != nil {
				params = append(params, identName(p.Name)+": "+TypeString(p.ParamType))
				continue
			}
			params = append(params, identName(p.Name))
		}
		return "fun (" + strings.Join(params, ", ") + ")"
	case *Application:
		return "app"
	case *LetExpression:
		return "let"
	case *LetBinding:
		return identName(n.Name) + " ="
	case *CaseExpression:
		return "case"
	case *MatchArm:
		s := "match "
		if n.Pattern != nil {
			if n.Pattern.TypeName != nil {
				s += n.Pattern.TypeName.Name + "."
			}
			s += identName(n.Pattern.Variant)
		}
		if n.Binder != nil {
			s += " fun " + n.Binder.Name
		}
		return s
	case *FieldAccess:
		return fmt.Sprintf("field %d", n.Index)
	default:
		return string(node.NodeType())
	}
}

func addChildren(branch tp.Tree, node Node) {
	add := func(child Node) {
		if child == nil {
			return
		}
		sub := branch.AddBranch(label(child))
		addChildren(sub, child)
	}
	switch n := node.(type) {
	case *Module:
		for _, t := range n.Types {
			add(t)
		}
		for _, v := range n.Values {
			add(v)
		}
	case *TypeDeclaration:
		for _, v := range n.Variants {
			if v != nil {
				branch.AddNode(label(v))
			}
		}
	case *ValueDeclaration:
		add(n.Value)
	case *FunctionExpression:
		add(n.Body)
	case *Application:
		add(n.Callee)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *LetExpression:
		for _, b := range n.Bindings {
			if b != nil {
				add(b)
			}
		}
		add(n.Body)
	case *LetBinding:
		add(n.Value)
	case *CaseExpression:
		add(n.Scrutinee)
		for _, arm := range n.Arms {
			if arm != nil {
				add(arm)
			}
		}
	case *MatchArm:
		add(n.Body)
	case *FieldAccess:
		add(n.Target)
	}
}

func identName(id *Identifier) string {
	if id == nil {
		return "_"
	}
	return id.Name
}
