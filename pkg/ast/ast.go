package ast

type NodeType string

const (
	NodeIdentifier         NodeType = "Identifier"
	NodeUnitLiteral        NodeType = "UnitLiteral"
	NodeIntegerLiteral     NodeType = "IntegerLiteral"
	NodeFloatLiteral       NodeType = "FloatLiteral"
	NodeCharLiteral        NodeType = "CharLiteral"
	NodeStringLiteral      NodeType = "StringLiteral"
	NodeConstructorRef     NodeType = "ConstructorRef"
	NodeFunctionExpression NodeType = "FunctionExpression"
	NodeFunctionParameter  NodeType = "FunctionParameter"
	NodeApplication        NodeType = "Application"
	NodeLetBinding         NodeType = "LetBinding"
	NodeLetExpression      NodeType = "LetExpression"
	NodeVariantPattern     NodeType = "VariantPattern"
	NodeMatchArm           NodeType = "MatchArm"
	NodeCaseExpression     NodeType = "CaseExpression"
	NodeFieldAccess        NodeType = "FieldAccess"
	NodeSimpleTypeExpr     NodeType = "SimpleTypeExpression"
	NodeFunctionTypeExpr   NodeType = "FunctionTypeExpression"
	NodeVariantDeclaration NodeType = "VariantDeclaration"
	NodeTypeDeclaration    NodeType = "TypeDeclaration"
	NodeValueDeclaration   NodeType = "ValueDeclaration"
	NodeModule             NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type UnitLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker
}

func NewUnitLiteral() *UnitLiteral {
	return &UnitLiteral{nodeImpl: newNodeImpl(NodeUnitLiteral)}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value    int64 `json:"value"`
	Unsigned bool  `json:"unsigned,omitempty"`
}

func NewIntegerLiteral(value int64, unsigned bool) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value, Unsigned: unsigned}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type CharLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value rune `json:"value"`
}

func NewCharLiteral(value rune) *CharLiteral {
	return &CharLiteral{nodeImpl: newNodeImpl(NodeCharLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

// ConstructorRef names a variant of a declared type. Nullary variants evaluate
// to their singleton value, boxed variants to a constructor function.
type ConstructorRef struct {
	nodeImpl
	expressionMarker

	TypeName *Identifier `json:"typeName"`
	Variant  *Identifier `json:"variant"`
}

func NewConstructorRef(typeName, variant *Identifier) *ConstructorRef {
	return &ConstructorRef{nodeImpl: newNodeImpl(NodeConstructorRef), TypeName: typeName, Variant: variant}
}

// Functions

type FunctionParameter struct {
	nodeImpl

	Name      *Identifier    `json:"name"`
	ParamType TypeExpression `json:"paramType,omitempty"`
}

func NewFunctionParameter(name *Identifier, paramType TypeExpression) *FunctionParameter {
	return &FunctionParameter{nodeImpl: newNodeImpl(NodeFunctionParameter), Name: name, ParamType: paramType}
}

type FunctionExpression struct {
	nodeImpl
	expressionMarker

	Params     []*FunctionParameter `json:"params"`
	ReturnType TypeExpression       `json:"returnType,omitempty"`
	Body       Expression           `json:"body"`
}

func NewFunctionExpression(params []*FunctionParameter, returnType TypeExpression, body Expression) *FunctionExpression {
	return &FunctionExpression{nodeImpl: newNodeImpl(NodeFunctionExpression), Params: params, ReturnType: returnType, Body: body}
}

type Application struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewApplication(callee Expression, args []Expression) *Application {
	return &Application{nodeImpl: newNodeImpl(NodeApplication), Callee: callee, Arguments: args}
}

// Let

type LetBinding struct {
	nodeImpl

	Name  *Identifier `json:"name"`
	Value Expression  `json:"value"`
}

func NewLetBinding(name *Identifier, value Expression) *LetBinding {
	return &LetBinding{nodeImpl: newNodeImpl(NodeLetBinding), Name: name, Value: value}
}

// LetExpression binds names non-recursively: every binding value is evaluated
// in the enclosing scope.
type LetExpression struct {
	nodeImpl
	expressionMarker

	Bindings []*LetBinding `json:"bindings"`
	Body     Expression    `json:"body"`
}

func NewLetExpression(bindings []*LetBinding, body Expression) *LetExpression {
	return &LetExpression{nodeImpl: newNodeImpl(NodeLetExpression), Bindings: bindings, Body: body}
}

// Case

type VariantPattern struct {
	nodeImpl

	TypeName *Identifier `json:"typeName,omitempty"`
	Variant  *Identifier `json:"variant"`
}

func NewVariantPattern(typeName, variant *Identifier) *VariantPattern {
	return &VariantPattern{nodeImpl: newNodeImpl(NodeVariantPattern), TypeName: typeName, Variant: variant}
}

// MatchArm binds Binder to the scrutinee payload within Body only.
type MatchArm struct {
	nodeImpl

	Pattern *VariantPattern `json:"pattern"`
	Binder  *Identifier     `json:"binder,omitempty"`
	Body    Expression      `json:"body"`
}

func NewMatchArm(pattern *VariantPattern, binder *Identifier, body Expression) *MatchArm {
	return &MatchArm{nodeImpl: newNodeImpl(NodeMatchArm), Pattern: pattern, Binder: binder, Body: body}
}

type CaseExpression struct {
	nodeImpl
	expressionMarker

	Scrutinee Expression  `json:"scrutinee"`
	Arms      []*MatchArm `json:"arms"`
}

func NewCaseExpression(scrutinee Expression, arms []*MatchArm) *CaseExpression {
	return &CaseExpression{nodeImpl: newNodeImpl(NodeCaseExpression), Scrutinee: scrutinee, Arms: arms}
}

// FieldAccess projects the Index-th field of a boxed or tuple payload.
type FieldAccess struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Index  int        `json:"index"`
}

func NewFieldAccess(target Expression, index int) *FieldAccess {
	return &FieldAccess{nodeImpl: newNodeImpl(NodeFieldAccess), Target: target, Index: index}
}

// Type expressions

type SimpleTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Name *Identifier `json:"name"`
}

func NewSimpleTypeExpression(name *Identifier) *SimpleTypeExpression {
	return &SimpleTypeExpression{nodeImpl: newNodeImpl(NodeSimpleTypeExpr), Name: name}
}

type FunctionTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	ParamTypes []TypeExpression `json:"paramTypes"`
	ReturnType TypeExpression   `json:"returnType"`
}

func NewFunctionTypeExpression(params []TypeExpression, returnType TypeExpression) *FunctionTypeExpression {
	return &FunctionTypeExpression{nodeImpl: newNodeImpl(NodeFunctionTypeExpr), ParamTypes: params, ReturnType: returnType}
}

// Module is the unit a front-end hands to the core: type declarations first,
// then value declarations evaluated in order.
type Module struct {
	nodeImpl

	Name   string              `json:"name,omitempty"`
	Types  []*TypeDeclaration  `json:"types"`
	Values []*ValueDeclaration `json:"values"`
	Entry  string              `json:"entry,omitempty"`
}

func NewModule(name string, types []*TypeDeclaration, values []*ValueDeclaration) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Name: name, Types: types, Values: values}
}
