package analyzer

import (
	"math"
	"strconv"
	"sync"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// Operand is one operand of an operator. Value is set when Constant is:
// int64 for integral types and char, float64, bool or string.
type Operand struct {
	Type     typesystem.Type
	Value    any
	Constant bool
}

// Resolved is the result of an operator: its type and, when every operand
// was constant and the operation is defined, its value.
type Resolved struct {
	Type     typesystem.Type
	Value    any
	Constant bool
	// Method is the method implementing the operator, nil for built-ins.
	Method *symbols.Symbol
}

// OperatorFunc resolves an operator for the given operands. It returns
// false when it does not apply, so the next registered func is tried.
type OperatorFunc func(ctx *Context, operands []Operand) (Resolved, bool)

// OperatorTable dispatches operators to hooks. Hooks for an operator are
// tried in registration order; the first that applies wins. Pseudo-methods
// on primitives are registered as ".name".
type OperatorTable struct {
	mu    sync.RWMutex
	hooks map[string][]OperatorFunc
}

func NewOperatorTable() *OperatorTable {
	return &OperatorTable{hooks: make(map[string][]OperatorFunc)}
}

// Register adds fn for op after the hooks already registered.
func (t *OperatorTable) Register(op string, fn OperatorFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks[op] = append(t.hooks[op], fn)
}

// Resolve returns the result of the first hook for op that applies.
func (t *OperatorTable) Resolve(ctx *Context, op string, operands []Operand) (Resolved, bool) {
	t.mu.RLock()
	hooks := t.hooks[op]
	t.mu.RUnlock()
	for _, fn := range hooks {
		if r, ok := fn(ctx, operands); ok {
			return r, true
		}
	}
	return Resolved{}, false
}

var (
	tInt     = typesystem.Prim{Tag: typesystem.Int}
	tBoolean = typesystem.Prim{Tag: typesystem.Boolean}
	tString  = typesystem.Class{Name: config.StringClass}
)

// DefaultOperators returns a table with the built-in operators of
// primitives and strings.
func DefaultOperators() *OperatorTable {
	t := NewOperatorTable()
	t.Register("+", concat)
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		t.Register(op, arithmetic(op))
	}
	for _, op := range []string{"&", "|", "^"} {
		t.Register(op, logical(op))
		t.Register(op, bitwise(op))
	}
	for _, op := range []string{"<<", ">>", ">>>"} {
		t.Register(op, shift(op))
	}
	for _, op := range []string{"==", "!=", "<", "<=", ">", ">="} {
		t.Register(op, compare(op))
	}
	t.Register("&&", logical("&"))
	t.Register("||", logical("|"))
	t.Register("!", not)
	t.Register("neg", negate)
	t.Register("~", complement)
	t.Register(".hashCode", hashCode)
	t.Register(".toString", toString)
	return t
}

// primOf returns the primitive tag of t, unboxing wrappers.
func primOf(t typesystem.Type) (typesystem.PrimTag, bool) {
	switch typ := t.(type) {
	case typesystem.Prim:
		if typ.Dim == 0 && typ.Tag != typesystem.Void {
			return typ.Tag, true
		}
	case typesystem.Class:
		if typ.Dim == 0 {
			return typesystem.Unwrap(typ.Name)
		}
	}
	return 0, false
}

// promote applies binary numeric promotion.
func promote(a, b typesystem.PrimTag) typesystem.PrimTag {
	switch {
	case a == typesystem.Double || b == typesystem.Double:
		return typesystem.Double
	case a == typesystem.Float || b == typesystem.Float:
		return typesystem.Float
	case a == typesystem.Long || b == typesystem.Long:
		return typesystem.Long
	}
	return typesystem.Int
}

func numericPair(ops []Operand) (typesystem.PrimTag, bool) {
	if len(ops) != 2 {
		return 0, false
	}
	a, okA := primOf(ops[0].Type)
	b, okB := primOf(ops[1].Type)
	if !okA || !okB || !a.Numeric() || !b.Numeric() {
		return 0, false
	}
	return promote(a, b), true
}

func bothConstant(ops []Operand) bool {
	for _, o := range ops {
		if !o.Constant {
			return false
		}
	}
	return true
}

func asInt(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	}
	return 0
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// wrap truncates an integral result to the width of tag.
func wrap(tag typesystem.PrimTag, v int64) int64 {
	if tag == typesystem.Int {
		return int64(int32(v))
	}
	return v
}

func primType(tag typesystem.PrimTag) typesystem.Type {
	return typesystem.Prim{Tag: tag}
}

func concat(_ *Context, ops []Operand) (Resolved, bool) {
	if len(ops) != 2 || !(isString(ops[0].Type) || isString(ops[1].Type)) {
		return Resolved{}, false
	}
	r := Resolved{Type: tString}
	if bothConstant(ops) {
		r.Value, r.Constant = Format(ops[0].Value, ops[0].Type)+Format(ops[1].Value, ops[1].Type), true
	}
	return r, true
}

func isString(t typesystem.Type) bool {
	c, ok := t.(typesystem.Class)
	return ok && c.Dim == 0 && c.Name == config.StringClass
}

func arithmetic(op string) OperatorFunc {
	return func(_ *Context, ops []Operand) (Resolved, bool) {
		tag, ok := numericPair(ops)
		if !ok {
			return Resolved{}, false
		}
		r := Resolved{Type: primType(tag)}
		if !bothConstant(ops) {
			return r, true
		}
		if tag == typesystem.Float || tag == typesystem.Double {
			a, b := asFloat(ops[0].Value), asFloat(ops[1].Value)
			var v float64
			switch op {
			case "+":
				v = a + b
			case "-":
				v = a - b
			case "*":
				v = a * b
			case "/":
				v = a / b
			case "%":
				v = math.Mod(a, b)
			}
			if tag == typesystem.Float {
				v = float64(float32(v))
			}
			r.Value, r.Constant = v, true
			return r, true
		}
		a, b := asInt(ops[0].Value), asInt(ops[1].Value)
		var v int64
		switch op {
		case "+":
			v = a + b
		case "-":
			v = a - b
		case "*":
			v = a * b
		case "/", "%":
			if b == 0 {
				// throws at run time; not a constant
				return r, true
			}
			if op == "/" {
				v = a / b
			} else {
				v = a % b
			}
		}
		r.Value, r.Constant = wrap(tag, v), true
		return r, true
	}
}

func bitwise(op string) OperatorFunc {
	return func(_ *Context, ops []Operand) (Resolved, bool) {
		tag, ok := numericPair(ops)
		if !ok || tag == typesystem.Float || tag == typesystem.Double {
			return Resolved{}, false
		}
		r := Resolved{Type: primType(tag)}
		if bothConstant(ops) {
			a, b := asInt(ops[0].Value), asInt(ops[1].Value)
			var v int64
			switch op {
			case "&":
				v = a & b
			case "|":
				v = a | b
			case "^":
				v = a ^ b
			}
			r.Value, r.Constant = wrap(tag, v), true
		}
		return r, true
	}
}

func shift(op string) OperatorFunc {
	return func(_ *Context, ops []Operand) (Resolved, bool) {
		if len(ops) != 2 {
			return Resolved{}, false
		}
		a, okA := primOf(ops[0].Type)
		b, okB := primOf(ops[1].Type)
		if !okA || !okB || !integral(a) || !integral(b) {
			return Resolved{}, false
		}
		tag := promote(a, typesystem.Int)
		r := Resolved{Type: primType(tag)}
		if !bothConstant(ops) {
			return r, true
		}
		v, n := asInt(ops[0].Value), uint(asInt(ops[1].Value))
		if tag == typesystem.Int {
			n &= 31
			switch op {
			case "<<":
				v = int64(int32(v) << n)
			case ">>":
				v = int64(int32(v) >> n)
			case ">>>":
				v = int64(int32(uint32(v) >> n))
			}
		} else {
			n &= 63
			switch op {
			case "<<":
				v <<= n
			case ">>":
				v >>= n
			case ">>>":
				v = int64(uint64(v) >> n)
			}
		}
		r.Value, r.Constant = v, true
		return r, true
	}
}

func integral(t typesystem.PrimTag) bool {
	return t.Numeric() && t != typesystem.Float && t != typesystem.Double
}

func compare(op string) OperatorFunc {
	return func(_ *Context, ops []Operand) (Resolved, bool) {
		r := Resolved{Type: tBoolean}
		if tag, ok := numericPair(ops); ok {
			if bothConstant(ops) {
				var c int
				if tag == typesystem.Float || tag == typesystem.Double {
					a, b := asFloat(ops[0].Value), asFloat(ops[1].Value)
					c = cmp(a < b, a > b)
					if math.IsNaN(a) || math.IsNaN(b) {
						r.Value, r.Constant = op == "!=", true
						return r, true
					}
				} else {
					a, b := asInt(ops[0].Value), asInt(ops[1].Value)
					c = cmp(a < b, a > b)
				}
				r.Value, r.Constant = ordered(op, c), true
			}
			return r, true
		}
		if (op == "==" || op == "!=") && len(ops) == 2 {
			a, okA := primOf(ops[0].Type)
			b, okB := primOf(ops[1].Type)
			if okA && okB && a == typesystem.Boolean && b == typesystem.Boolean {
				if bothConstant(ops) {
					eq := ops[0].Value == ops[1].Value
					r.Value, r.Constant = eq == (op == "=="), true
				}
				return r, true
			}
		}
		return Resolved{}, false
	}
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func ordered(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	}
	return c >= 0
}

func booleans(ops []Operand, n int) bool {
	if len(ops) != n {
		return false
	}
	for _, o := range ops {
		if tag, ok := primOf(o.Type); !ok || tag != typesystem.Boolean {
			return false
		}
	}
	return true
}

func logical(op string) OperatorFunc {
	return func(_ *Context, ops []Operand) (Resolved, bool) {
		if !booleans(ops, 2) {
			return Resolved{}, false
		}
		r := Resolved{Type: tBoolean}
		if bothConstant(ops) {
			a, _ := ops[0].Value.(bool)
			b, _ := ops[1].Value.(bool)
			switch op {
			case "&":
				r.Value = a && b
			case "|":
				r.Value = a || b
			case "^":
				r.Value = a != b
			}
			r.Constant = true
		}
		return r, true
	}
}

func not(_ *Context, ops []Operand) (Resolved, bool) {
	if !booleans(ops, 1) {
		return Resolved{}, false
	}
	r := Resolved{Type: tBoolean}
	if ops[0].Constant {
		b, _ := ops[0].Value.(bool)
		r.Value, r.Constant = !b, true
	}
	return r, true
}

func negate(_ *Context, ops []Operand) (Resolved, bool) {
	if len(ops) != 1 {
		return Resolved{}, false
	}
	tag, ok := primOf(ops[0].Type)
	if !ok || !tag.Numeric() {
		return Resolved{}, false
	}
	tag = promote(tag, typesystem.Int)
	r := Resolved{Type: primType(tag)}
	if ops[0].Constant {
		if tag == typesystem.Float || tag == typesystem.Double {
			r.Value = -asFloat(ops[0].Value)
		} else {
			r.Value = wrap(tag, -asInt(ops[0].Value))
		}
		r.Constant = true
	}
	return r, true
}

func complement(_ *Context, ops []Operand) (Resolved, bool) {
	if len(ops) != 1 {
		return Resolved{}, false
	}
	tag, ok := primOf(ops[0].Type)
	if !ok || !integral(tag) {
		return Resolved{}, false
	}
	tag = promote(tag, typesystem.Int)
	r := Resolved{Type: primType(tag)}
	if ops[0].Constant {
		r.Value, r.Constant = wrap(tag, ^asInt(ops[0].Value)), true
	}
	return r, true
}

// hashCode is the pseudo-method hashCode() on a primitive receiver.
func hashCode(_ *Context, ops []Operand) (Resolved, bool) {
	if len(ops) != 1 {
		return Resolved{}, false
	}
	p, ok := ops[0].Type.(typesystem.Prim)
	if !ok || p.Dim != 0 || p.Tag == typesystem.Void {
		return Resolved{}, false
	}
	r := Resolved{Type: tInt}
	if !ops[0].Constant {
		return r, true
	}
	var h int64
	switch p.Tag {
	case typesystem.Boolean:
		h = 1237
		if b, _ := ops[0].Value.(bool); b {
			h = 1231
		}
	case typesystem.Long:
		v := asInt(ops[0].Value)
		h = int64(int32(v ^ int64(uint64(v)>>32)))
	case typesystem.Float:
		h = int64(int32(math.Float32bits(float32(asFloat(ops[0].Value)))))
	case typesystem.Double:
		bits := math.Float64bits(asFloat(ops[0].Value))
		h = int64(int32(bits ^ bits>>32))
	default:
		h = asInt(ops[0].Value)
	}
	r.Value, r.Constant = h, true
	return r, true
}

// toString is the pseudo-method toString() on a primitive receiver.
func toString(_ *Context, ops []Operand) (Resolved, bool) {
	if len(ops) != 1 {
		return Resolved{}, false
	}
	p, ok := ops[0].Type.(typesystem.Prim)
	if !ok || p.Dim != 0 || p.Tag == typesystem.Void {
		return Resolved{}, false
	}
	r := Resolved{Type: tString}
	if ops[0].Constant {
		r.Value, r.Constant = Format(ops[0].Value, p), true
	}
	return r, true
}

// Format renders a constant value the way string concatenation does.
func Format(v any, t typesystem.Type) string {
	tag, _ := primOf(t)
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		if tag == typesystem.Char {
			return string(rune(x))
		}
		return strconv.FormatInt(x, 10)
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "Infinity"
		case math.IsInf(x, -1):
			return "-Infinity"
		}
		bits := 64
		if tag == typesystem.Float {
			bits = 32
		}
		s := strconv.FormatFloat(x, 'f', -1, bits)
		if x == math.Trunc(x) && math.Abs(x) < 1e7 {
			s += ".0"
		}
		return s
	case nil:
		return "null"
	}
	return ""
}
