package internal

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/zephyrtronium/contains"

	"github.com/zephyrtronium/hslang/internal/token"
)

// PropertyContainer is a value with named properties.
type PropertyContainer interface {
	// Get returns the property named by name.
	Get(name token.Token) (Value, error)
	// Set changes the property named by name.
	Set(name token.Token, v Value) error
}

// constructorName is the method name under which constructors are bound.
var constructorName = token.Constructor.DefaultLexeme()

// Class is a user-declared class.
type Class struct {
	Name       string
	Superclass *Class
	// Constructor is the class's own constructor, or nil if it declares
	// none. It is also bound in Methods under the name "constructor".
	Constructor *Function
	Methods     map[string]*Function
	// Fields maps each field the class itself declares to its declaration.
	// Fields of superclasses are not included.
	Fields map[string]*FieldDecl
	// fieldOrder holds the class's field declarations in source order.
	fieldOrder []*FieldDecl

	Final   bool
	Dynamic bool

	// Closure is the scope methods are bound against. For subclasses, it
	// binds super.
	Closure *Scope

	id uintptr
}

// NewClass creates a class with no members and a fresh identity.
func NewClass(name string, super *Class) *Class {
	return &Class{
		Name:       name,
		Superclass: super,
		Methods:    make(map[string]*Function),
		Fields:     make(map[string]*FieldDecl),
		id:         nextID(),
	}
}

// UniqueID returns the class's unique ID.
func (c *Class) UniqueID() uintptr {
	return c.id
}

// FindMethod finds a method by name in the class or its superclasses.
func (c *Class) FindMethod(name string) *Function {
	var set contains.Set
	for k := c; k != nil && set.Add(k.id); k = k.Superclass {
		if m, ok := k.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	var set contains.Set
	for k := c; k != nil && set.Add(k.id); k = k.Superclass {
		if k == other {
			return true
		}
	}
	return false
}

// Arity returns the number of arguments needed to instantiate the class.
func (c *Class) Arity() int {
	if ctor := c.FindMethod(constructorName); ctor != nil {
		return ctor.Arity()
	}
	return 0
}

// chain returns the class and its superclasses, root first.
func (c *Class) chain() []*Class {
	var set contains.Set
	var r []*Class
	for k := c; k != nil && set.Add(k.id); k = k.Superclass {
		r = append(r, k)
	}
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return r
}

// dynamic reports whether instances of the class accept undeclared fields.
func (c *Class) dynamic() bool {
	for _, k := range c.chain() {
		if k.Dynamic {
			return true
		}
	}
	return false
}

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	fields map[string]Value
}

// Get returns a field, or else a method bound to the instance.
func (i *Instance) Get(name token.Token) (Value, error) {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return m.Bind(i), nil
	}
	return nil, RuntimeErr(name, ErrUndefinedProperty, "%s has no property %s", i.Class.Name, name.Lexeme)
}

// Set changes a field. Instances of non-dynamic classes only accept fields
// their classes declare.
func (i *Instance) Set(name token.Token, v Value) error {
	if _, ok := i.fields[name.Lexeme]; !ok && !i.Class.dynamic() {
		return RuntimeErr(name, ErrUndefinedProperty, "%s has no field %s", i.Class.Name, name.Lexeme)
	}
	i.fields[name.Lexeme] = v
	return nil
}

// FieldNames returns the names of the instance's fields in sorted order.
func (i *Instance) FieldNames() []string {
	r := make([]string, 0, len(i.fields))
	for k := range i.fields {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Get returns an exported field of a boxed struct or an entry of a boxed map
// with string keys.
func (e *External) Get(name token.Token) (Value, error) {
	rv := reflect.Indirect(reflect.ValueOf(e.v))
	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(name.Lexeme)
		if f.IsValid() && f.CanInterface() {
			return FromGo(f.Interface()), nil
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(name.Lexeme).Convert(rv.Type().Key()))
			if v.IsValid() {
				return FromGo(v.Interface()), nil
			}
			return nil, nil
		}
	}
	if m := reflect.ValueOf(e.v).MethodByName(name.Lexeme); m.IsValid() {
		return NewExternal(m.Interface()), nil
	}
	return nil, RuntimeErr(name, ErrUndefinedProperty, "%T has no property %s", e.v, name.Lexeme)
}

// Set changes an exported field of a boxed pointer to a struct or an entry of
// a boxed map with string keys.
func (e *External) Set(name token.Token, v Value) error {
	rv := reflect.ValueOf(e.v)
	switch {
	case rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Struct:
		f := rv.Elem().FieldByName(name.Lexeme)
		if !f.IsValid() || !f.CanSet() {
			break
		}
		x, err := toGo(v, f.Type())
		if err != nil {
			return RuntimeErr(name, ErrType, "cannot set %s: %v", name.Lexeme, err)
		}
		f.Set(x)
		return nil
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		x, err := toGo(v, rv.Type().Elem())
		if err != nil {
			return RuntimeErr(name, ErrType, "cannot set %s: %v", name.Lexeme, err)
		}
		rv.SetMapIndex(reflect.ValueOf(name.Lexeme).Convert(rv.Type().Key()), x)
		return nil
	}
	return RuntimeErr(name, ErrUndefinedProperty, "%T has no settable property %s", e.v, name.Lexeme)
}

// toGo converts an hslang value to a host value of type t.
func toGo(v Value, t reflect.Type) (reflect.Value, error) {
	if e, ok := v.(*External); ok {
		v = e.v
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use null as %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		if f, ok := v.(float64); ok {
			return reflect.ValueOf(f).Convert(t), nil
		}
	case reflect.String:
		if s, ok := v.(string); ok {
			return reflect.ValueOf(s).Convert(t), nil
		}
	case reflect.Bool:
		if b, ok := v.(bool); ok {
			return reflect.ValueOf(b).Convert(t), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", TypeName(v), t)
}
