package driver

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"sumcore/interpreter-go/pkg/ast"
)

// DecodeError reports a malformed node of a program file.
type DecodeError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *DecodeError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Column, e.Message)
}

type decoder struct {
	file string
}

func (d *decoder) errorf(node *yaml.Node, format string, args ...any) error {
	err := &DecodeError{File: d.file, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Line, err.Column = node.Line, node.Column
	}
	return err
}

// Expression keys. Every tagged mapping has exactly one head key; the other
// keys it may carry are listed with it.
var expressionKeys = map[string][]string{
	"unit":  nil,
	"int":   nil,
	"uint":  nil,
	"float": nil,
	"char":  nil,
	"str":   nil,
	"ctor":  nil,
	"fun":   {"body", "returns"},
	"call":  {"args"},
	"let":   {"in"},
	"case":  {"arms"},
	"field": {"index"},
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func mappingKeys(node *yaml.Node) (map[string]*yaml.Node, []string) {
	values := make(map[string]*yaml.Node, len(node.Content)/2)
	order := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		values[key] = node.Content[i+1]
		order = append(order, key)
	}
	return values, order
}

func (d *decoder) expression(node *yaml.Node) (ast.Expression, error) {
	node = resolveAlias(node)
	if node == nil || node.Kind == 0 {
		return nil, d.errorf(node, "missing expression")
	}
	switch node.Kind {
	case yaml.ScalarNode:
		return d.scalarExpression(node)
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return ast.NewUnitLiteral(), nil
		}
		callee, err := d.expression(node.Content[0])
		if err != nil {
			return nil, err
		}
		args, err := d.expressionList(node.Content[1:])
		if err != nil {
			return nil, err
		}
		return ast.NewApplication(callee, args), nil
	case yaml.MappingNode:
		return d.taggedExpression(node)
	default:
		return nil, d.errorf(node, "unexpected %s node in expression", node.ShortTag())
	}
}

func (d *decoder) expressionList(nodes []*yaml.Node) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(nodes))
	for _, n := range nodes {
		expr, err := d.expression(n)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

// scalarExpression decodes bare scalars: numbers are literals, null is unit,
// a dotted name is a constructor reference and any other name an identifier.
func (d *decoder) scalarExpression(node *yaml.Node) (ast.Expression, error) {
	switch node.ShortTag() {
	case "!!null":
		return ast.NewUnitLiteral(), nil
	case "!!int":
		v, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, d.errorf(node, "integer literal %q: %v", node.Value, err)
		}
		return ast.NewIntegerLiteral(v, false), nil
	case "!!float":
		v, err := parseFloat(node.Value)
		if err != nil {
			return nil, d.errorf(node, "float literal %q: %v", node.Value, err)
		}
		return ast.NewFloatLiteral(v), nil
	case "!!bool":
		return nil, d.errorf(node, "boolean %q is not a value; declare a Bool type and use its constructors", node.Value)
	case "!!str":
		if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return nil, d.errorf(node, "quoted scalar %q: write string literals as {str: ...}", node.Value)
		}
		return d.reference(node)
	default:
		return nil, d.errorf(node, "unsupported scalar %s", node.ShortTag())
	}
}

func (d *decoder) reference(node *yaml.Node) (ast.Expression, error) {
	name := strings.TrimSpace(node.Value)
	if name == "" {
		return nil, d.errorf(node, "empty name")
	}
	if typeName, variant, ok := strings.Cut(name, "."); ok {
		if typeName == "" || variant == "" || strings.Contains(variant, ".") {
			return nil, d.errorf(node, "malformed constructor reference %q", name)
		}
		return ast.NewConstructorRef(ast.NewIdentifier(typeName), ast.NewIdentifier(variant)), nil
	}
	return ast.NewIdentifier(name), nil
}

func (d *decoder) taggedExpression(node *yaml.Node) (ast.Expression, error) {
	fields, order := mappingKeys(node)
	head := ""
	for _, key := range order {
		if _, ok := expressionKeys[key]; ok {
			if head != "" {
				return nil, d.errorf(node, "expression has both %q and %q", head, key)
			}
			head = key
		}
	}
	if head == "" {
		return nil, d.errorf(node, "expression mapping needs one of %s", strings.Join(expressionHeads(), ", "))
	}
	allowed := expressionKeys[head]
	for _, key := range order {
		if key != head && !contains(allowed, key) {
			return nil, d.errorf(node, "unknown key %q in %s expression", key, head)
		}
	}
	value := resolveAlias(fields[head])

	switch head {
	case "unit":
		return ast.NewUnitLiteral(), nil
	case "int":
		v, err := strconv.ParseInt(value.Value, 0, 64)
		if err != nil {
			return nil, d.errorf(value, "integer literal %q: %v", value.Value, err)
		}
		return ast.NewIntegerLiteral(v, false), nil
	case "uint":
		v, err := strconv.ParseUint(value.Value, 0, 64)
		if err != nil {
			return nil, d.errorf(value, "unsigned literal %q: %v", value.Value, err)
		}
		return ast.NewIntegerLiteral(int64(v), true), nil
	case "float":
		v, err := parseFloat(value.Value)
		if err != nil {
			return nil, d.errorf(value, "float literal %q: %v", value.Value, err)
		}
		return ast.NewFloatLiteral(v), nil
	case "char":
		if utf8.RuneCountInString(value.Value) != 1 {
			return nil, d.errorf(value, "char literal %q must be a single character", value.Value)
		}
		r, _ := utf8.DecodeRuneInString(value.Value)
		return ast.NewCharLiteral(r), nil
	case "str":
		if value.Kind != yaml.ScalarNode {
			return nil, d.errorf(value, "string literal must be a scalar")
		}
		return ast.NewStringLiteral(value.Value), nil
	case "ctor":
		return d.constructor(value)
	case "fun":
		return d.function(value, fields)
	case "call":
		return d.call(value, fields)
	case "let":
		return d.let(value, fields)
	case "case":
		return d.caseExpression(node, value, fields)
	case "field":
		return d.field(node, value, fields)
	}
	return nil, d.errorf(node, "unsupported expression %q", head)
}

// constructor decodes {ctor: Variant} or {ctor: Type.Variant}. The bare form
// leaves the owning type to be resolved by variant name.
func (d *decoder) constructor(node *yaml.Node) (ast.Expression, error) {
	if node.Kind != yaml.ScalarNode || node.Value == "" {
		return nil, d.errorf(node, "ctor needs a variant name")
	}
	if strings.Contains(node.Value, ".") {
		return d.reference(node)
	}
	return ast.NewConstructorRef(nil, ast.NewIdentifier(node.Value)), nil
}

func (d *decoder) function(params *yaml.Node, fields map[string]*yaml.Node) (ast.Expression, error) {
	if params.Kind != yaml.SequenceNode {
		return nil, d.errorf(params, "fun takes a list of parameters")
	}
	out := make([]*ast.FunctionParameter, 0, len(params.Content))
	for _, p := range params.Content {
		param, err := d.parameter(resolveAlias(p))
		if err != nil {
			return nil, err
		}
		out = append(out, param)
	}
	body, ok := fields["body"]
	if !ok {
		return nil, d.errorf(params, "fun needs a body")
	}
	bodyExpr, err := d.expression(body)
	if err != nil {
		return nil, err
	}
	var ret ast.TypeExpression
	if returns, ok := fields["returns"]; ok {
		if ret, err = d.typeExpression(returns); err != nil {
			return nil, err
		}
	}
	return ast.NewFunctionExpression(out, ret, bodyExpr), nil
}

// parameter decodes `x` or `{x: Type}`.
func (d *decoder) parameter(node *yaml.Node) (*ast.FunctionParameter, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, d.errorf(node, "empty parameter name")
		}
		return ast.NewFunctionParameter(ast.NewIdentifier(node.Value), nil), nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, d.errorf(node, "typed parameter is a single name: type pair")
		}
		typ, err := d.typeExpression(node.Content[1])
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionParameter(ast.NewIdentifier(node.Content[0].Value), typ), nil
	default:
		return nil, d.errorf(node, "unexpected parameter %s", node.ShortTag())
	}
}

func (d *decoder) call(callee *yaml.Node, fields map[string]*yaml.Node) (ast.Expression, error) {
	fn, err := d.expression(callee)
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if argsNode, ok := fields["args"]; ok {
		argsNode = resolveAlias(argsNode)
		if argsNode.Kind != yaml.SequenceNode {
			return nil, d.errorf(argsNode, "args must be a list")
		}
		if args, err = d.expressionList(argsNode.Content); err != nil {
			return nil, err
		}
	}
	return ast.NewApplication(fn, args), nil
}

// let decodes {let: {a: e1, b: e2}, in: body}; bindings keep their order.
func (d *decoder) let(bindings *yaml.Node, fields map[string]*yaml.Node) (ast.Expression, error) {
	if bindings.Kind != yaml.MappingNode {
		return nil, d.errorf(bindings, "let takes a mapping of bindings")
	}
	out := make([]*ast.LetBinding, 0, len(bindings.Content)/2)
	for i := 0; i+1 < len(bindings.Content); i += 2 {
		name := bindings.Content[i]
		if name.Value == "" {
			return nil, d.errorf(name, "empty binding name")
		}
		value, err := d.expression(bindings.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, ast.NewLetBinding(ast.NewIdentifier(name.Value), value))
	}
	body, ok := fields["in"]
	if !ok {
		return nil, d.errorf(bindings, "let needs an in body")
	}
	bodyExpr, err := d.expression(body)
	if err != nil {
		return nil, err
	}
	return ast.NewLetExpression(out, bodyExpr), nil
}

func (d *decoder) caseExpression(node, scrutinee *yaml.Node, fields map[string]*yaml.Node) (ast.Expression, error) {
	subject, err := d.expression(scrutinee)
	if err != nil {
		return nil, err
	}
	armsNode, ok := fields["arms"]
	if !ok {
		return nil, d.errorf(node, "case needs arms")
	}
	armsNode = resolveAlias(armsNode)
	if armsNode.Kind != yaml.SequenceNode {
		return nil, d.errorf(armsNode, "arms must be a list")
	}
	arms := make([]*ast.MatchArm, 0, len(armsNode.Content))
	for _, a := range armsNode.Content {
		arm, err := d.arm(resolveAlias(a))
		if err != nil {
			return nil, err
		}
		arms = append(arms, arm)
	}
	return ast.NewCaseExpression(subject, arms), nil
}

// arm decodes {match: Type.Variant, bind: x, do: body}.
func (d *decoder) arm(node *yaml.Node) (*ast.MatchArm, error) {
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(node, "case arm must be a mapping")
	}
	fields, order := mappingKeys(node)
	for _, key := range order {
		if key != "match" && key != "bind" && key != "do" {
			return nil, d.errorf(node, "unknown key %q in case arm", key)
		}
	}
	patNode, ok := fields["match"]
	if !ok || patNode.Kind != yaml.ScalarNode || patNode.Value == "" {
		return nil, d.errorf(node, "case arm needs a match pattern")
	}
	var pattern *ast.VariantPattern
	if typeName, variant, dotted := strings.Cut(patNode.Value, "."); dotted {
		pattern = ast.NewVariantPattern(ast.NewIdentifier(typeName), ast.NewIdentifier(variant))
	} else {
		pattern = ast.NewVariantPattern(nil, ast.NewIdentifier(patNode.Value))
	}
	var binder *ast.Identifier
	if bind, ok := fields["bind"]; ok && bind.Value != "" {
		binder = ast.NewIdentifier(bind.Value)
	}
	bodyNode, ok := fields["do"]
	if !ok {
		return nil, d.errorf(node, "case arm needs a do body")
	}
	body, err := d.expression(bodyNode)
	if err != nil {
		return nil, err
	}
	return ast.NewMatchArm(pattern, binder, body), nil
}

func (d *decoder) field(node, target *yaml.Node, fields map[string]*yaml.Node) (ast.Expression, error) {
	expr, err := d.expression(target)
	if err != nil {
		return nil, err
	}
	indexNode, ok := fields["index"]
	if !ok {
		return nil, d.errorf(node, "field needs an index")
	}
	index, err := strconv.Atoi(indexNode.Value)
	if err != nil || index < 0 {
		return nil, d.errorf(indexNode, "field index %q must be a non-negative integer", indexNode.Value)
	}
	return ast.NewFieldAccess(expr, index), nil
}

// typeExpression decodes `Name` or {fn: [params...], returns: Type}.
func (d *decoder) typeExpression(node *yaml.Node) (ast.TypeExpression, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, d.errorf(node, "empty type name")
		}
		return ast.NewSimpleTypeExpression(ast.NewIdentifier(node.Value)), nil
	case yaml.MappingNode:
		fields, order := mappingKeys(node)
		for _, key := range order {
			if key != "fn" && key != "returns" {
				return nil, d.errorf(node, "unknown key %q in function type", key)
			}
		}
		paramsNode, ok := fields["fn"]
		if !ok || resolveAlias(paramsNode).Kind != yaml.SequenceNode {
			return nil, d.errorf(node, "function type needs a fn list")
		}
		params := make([]ast.TypeExpression, 0, len(paramsNode.Content))
		for _, p := range resolveAlias(paramsNode).Content {
			typ, err := d.typeExpression(p)
			if err != nil {
				return nil, err
			}
			params = append(params, typ)
		}
		retNode, ok := fields["returns"]
		if !ok {
			return nil, d.errorf(node, "function type needs returns")
		}
		ret, err := d.typeExpression(retNode)
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionTypeExpression(params, ret), nil
	default:
		return nil, d.errorf(node, "unexpected %s in type position", node.ShortTag())
	}
}

// typeDeclaration decodes one entry of a program's types list.
func (d *decoder) typeDeclaration(node *yaml.Node) (*ast.TypeDeclaration, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(node, "type declaration must be a mapping")
	}
	fields, order := mappingKeys(node)
	var kind ast.TypeKind
	var nameNode *yaml.Node
	for _, key := range order {
		switch key {
		case string(ast.TypeKindSum), string(ast.TypeKindEnum), string(ast.TypeKindProduct):
			if kind != "" {
				return nil, d.errorf(node, "type declaration has both %s and %s", kind, key)
			}
			kind, nameNode = ast.TypeKind(key), fields[key]
		case "variants", "fields":
		default:
			return nil, d.errorf(node, "unknown key %q in type declaration", key)
		}
	}
	if kind == "" {
		return nil, d.errorf(node, "type declaration needs one of sum, enum or product")
	}
	if nameNode.Kind != yaml.ScalarNode || nameNode.Value == "" {
		return nil, d.errorf(nameNode, "type name must be a non-empty scalar")
	}
	name := nameNode.Value

	if kind == ast.TypeKindProduct {
		if _, ok := fields["variants"]; ok {
			return nil, d.errorf(node, "product %s declares fields, not variants", name)
		}
		var types []ast.TypeExpression
		if f, ok := fields["fields"]; ok {
			var err error
			if types, err = d.typeList(f); err != nil {
				return nil, err
			}
		}
		variant := ast.NewVariantDeclaration(ast.NewIdentifier(name), ast.RepresentationBoxed, types, nil)
		if len(types) == 0 {
			variant.Representation = ast.RepresentationAtomic
		}
		return ast.NewTypeDeclaration(ast.NewIdentifier(name), kind, []*ast.VariantDeclaration{variant}), nil
	}

	if _, ok := fields["fields"]; ok {
		return nil, d.errorf(node, "%s %s declares variants, not fields", kind, name)
	}
	variantsNode, ok := fields["variants"]
	if !ok || resolveAlias(variantsNode).Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "%s %s needs a variants list", kind, name)
	}
	defaultRepr := ast.RepresentationAtomic
	if kind == ast.TypeKindEnum {
		defaultRepr = ast.RepresentationPrimitive
	}
	variants := make([]*ast.VariantDeclaration, 0, len(variantsNode.Content))
	for _, v := range resolveAlias(variantsNode).Content {
		variant, err := d.variant(resolveAlias(v), defaultRepr)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return ast.NewTypeDeclaration(ast.NewIdentifier(name), kind, variants), nil
}

// variant decodes `Name`, `Name: [fields]` or the long form
// {name, repr, fields, asSize}.
func (d *decoder) variant(node *yaml.Node, defaultRepr ast.Representation) (*ast.VariantDeclaration, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, d.errorf(node, "empty variant name")
		}
		return ast.NewVariantDeclaration(ast.NewIdentifier(node.Value), defaultRepr, nil, nil), nil
	case yaml.MappingNode:
	default:
		return nil, d.errorf(node, "unexpected variant %s", node.ShortTag())
	}
	fields, order := mappingKeys(node)
	if _, long := fields["name"]; !long {
		if len(order) != 1 {
			return nil, d.errorf(node, "short variant form is a single name: fields pair")
		}
		types, err := d.typeList(fields[order[0]])
		if err != nil {
			return nil, err
		}
		return ast.NewVariantDeclaration(ast.NewIdentifier(order[0]), ast.RepresentationBoxed, types, nil), nil
	}

	var raw struct {
		Name   string    `yaml:"name"`
		Repr   string    `yaml:"repr"`
		Fields yaml.Node `yaml:"fields"`
		AsSize *uint64   `yaml:"asSize"`
	}
	if err := node.Decode(&raw); err != nil {
		return nil, d.errorf(node, "variant: %v", err)
	}
	for _, key := range order {
		if key != "name" && key != "repr" && key != "fields" && key != "asSize" {
			return nil, d.errorf(node, "unknown key %q in variant %s", key, raw.Name)
		}
	}
	var types []ast.TypeExpression
	if raw.Fields.Kind != 0 {
		var err error
		if types, err = d.typeList(&raw.Fields); err != nil {
			return nil, err
		}
	}
	repr := ast.Representation(raw.Repr)
	if repr == "" {
		repr = defaultRepr
		if len(types) > 0 {
			repr = ast.RepresentationBoxed
		}
	}
	return ast.NewVariantDeclaration(ast.NewIdentifier(raw.Name), repr, types, raw.AsSize), nil
}

func (d *decoder) typeList(node *yaml.Node) ([]ast.TypeExpression, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "expected a list of types")
	}
	out := make([]ast.TypeExpression, 0, len(node.Content))
	for _, n := range node.Content {
		typ, err := d.typeExpression(n)
		if err != nil {
			return nil, err
		}
		out = append(out, typ)
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	case ".nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func expressionHeads() []string {
	out := make([]string, 0, len(expressionKeys))
	for key := range expressionKeys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
