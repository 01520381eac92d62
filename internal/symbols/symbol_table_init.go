package symbols

import (
	"sync"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/typesystem"
)

// Singleton prelude library containing the core runtime classes
var (
	preludeLib  *MemoryLibrary
	preludeOnce sync.Once
)

const preludeOrigin = "prelude"

// GetPrelude returns the singleton library of built-in classes. Every Table
// consults it first.
func GetPrelude() *MemoryLibrary {
	preludeOnce.Do(func() {
		preludeLib = NewMemoryLibrary(preludeOrigin)
		initPrelude(preludeLib)
	})
	return preludeLib
}

// DefineClass builds a class symbol from type syntax. super may be empty;
// supertypes may reference the class's own type parameters.
func DefineClass(name string, mods Modifier, params []TypeParam, super string, interfaces ...string) *Symbol {
	names := ParamNames(params)
	c := NewClass(name, mods, "")
	var sig Signature
	sig.TypeParams = params
	ifaceNames := make([]string, 0, len(interfaces))
	if super != "" {
		t := typesystem.MustParseIn(super, names...)
		sig.SuperTypes = append(sig.SuperTypes, t)
		c.super = typesystem.ClassName(t)
	} else if name != config.ObjectClass && !mods.Has(Interface) {
		c.super = config.ObjectClass
		sig.SuperTypes = append(sig.SuperTypes, typesystem.Object)
	}
	for _, i := range interfaces {
		t := typesystem.MustParseIn(i, names...)
		sig.SuperTypes = append(sig.SuperTypes, t)
		ifaceNames = append(ifaceNames, typesystem.ClassName(t))
	}
	c.interfaces = ifaceNames
	c.sig = sig
	c.resolved = true
	return c
}

// DefineMethod adds a method whose types are given as syntax.
func DefineMethod(c *Symbol, name string, mods Modifier, ret string, params ...string) *Symbol {
	names := ParamNames(c.sig.TypeParams)
	m := NewMethod(c.Name, name, mods, typesystem.MustParseIn(ret, names...))
	for _, p := range params {
		m.sig.Params = append(m.sig.Params, typesystem.MustParseIn(p, names...))
	}
	m.resolved = true
	return c.AddMember(m)
}

// DefineField adds a field whose type is given as syntax.
func DefineField(c *Symbol, name string, mods Modifier, typ string) *Symbol {
	f := NewField(c.Name, name, mods, typesystem.MustParseIn(typ, ParamNames(c.sig.TypeParams)...))
	f.resolved = true
	return c.AddMember(f)
}

func tp(name string, bounds ...string) TypeParam {
	p := TypeParam{Name: name}
	for _, b := range bounds {
		p.Bounds = append(p.Bounds, typesystem.MustParseIn(b, name))
	}
	return p
}

func initPrelude(lib *MemoryLibrary) {
	const (
		pub   = Public
		pf    = Public | Final
		iface = Public | Interface | Abstract
		abs   = Public | Abstract
		ps    = Public | Static
		psf   = Public | Static | Final
	)

	object := DefineClass(config.ObjectClass, pub, nil, "")
	DefineMethod(object, config.ConstructorName, pub, "void")
	DefineMethod(object, "toString", pub, "java/lang/String")
	DefineMethod(object, "equals", pub, "boolean", "java/lang/Object")
	DefineMethod(object, "hashCode", pub, "int")
	DefineMethod(object, "clone", Protected, "java/lang/Object")
	lib.Add(object)

	lib.Add(DefineClass(config.SerializableClass, iface, nil, ""))
	lib.Add(DefineClass(config.CloneableClass, iface, nil, ""))

	comparable := DefineClass("java/lang/Comparable", iface, []TypeParam{tp("T")}, "")
	DefineMethod(comparable, "compareTo", abs, "int", "T")
	lib.Add(comparable)

	charSeq := DefineClass("java/lang/CharSequence", iface, nil, "")
	DefineMethod(charSeq, "length", abs, "int")
	DefineMethod(charSeq, "charAt", abs, "char", "int")
	lib.Add(charSeq)

	iterable := DefineClass("java/lang/Iterable", iface, []TypeParam{tp("T")}, "")
	DefineMethod(iterable, "iterator", abs, "java/util/Iterator<T>")
	lib.Add(iterable)

	runnable := DefineClass("java/lang/Runnable", iface, nil, "")
	runnable.Annotations = []string{config.FunctionalInterfaceDirective}
	DefineMethod(runnable, "run", abs, "void")
	lib.Add(runnable)

	str := DefineClass(config.StringClass, pf, nil, "",
		config.SerializableClass, "java/lang/Comparable<java/lang/String>", "java/lang/CharSequence")
	DefineMethod(str, config.ConstructorName, pub, "void")
	DefineMethod(str, config.ConstructorName, pub, "void", "char[]")
	DefineMethod(str, "length", pub, "int")
	DefineMethod(str, "charAt", pub, "char", "int")
	DefineMethod(str, "compareTo", pub, "int", "java/lang/String")
	DefineMethod(str, "substring", pub, "java/lang/String", "int")
	DefineMethod(str, "substring", pub, "java/lang/String", "int", "int")
	DefineMethod(str, "indexOf", pub, "int", "int")
	DefineMethod(str, "indexOf", pub, "int", "java/lang/String")
	DefineMethod(str, "valueOf", ps, "java/lang/String", "java/lang/Object")
	DefineMethod(str, "valueOf", ps, "java/lang/String", "int")
	DefineMethod(str, "valueOf", ps, "java/lang/String", "long")
	DefineMethod(str, "valueOf", ps, "java/lang/String", "char")
	DefineMethod(str, "format", ps|Varargs, "java/lang/String", "java/lang/String", "java/lang/Object[]")
	lib.Add(str)

	number := DefineClass(config.NumberClass, abs, nil, "", config.SerializableClass)
	DefineMethod(number, "intValue", abs, "int")
	DefineMethod(number, "longValue", abs, "long")
	DefineMethod(number, "doubleValue", abs, "double")
	lib.Add(number)

	for _, tag := range []typesystem.PrimTag{
		typesystem.Boolean, typesystem.Byte, typesystem.Char, typesystem.Short,
		typesystem.Int, typesystem.Long, typesystem.Float, typesystem.Double,
	} {
		wrapper := tag.Wrapper()
		super := ""
		if tag != typesystem.Boolean && tag != typesystem.Char {
			super = config.NumberClass
		}
		w := DefineClass(wrapper, pf, nil, super,
			config.SerializableClass, "java/lang/Comparable<"+wrapper+">")
		DefineMethod(w, "valueOf", ps, wrapper, tag.String())
		DefineMethod(w, tag.String()+"Value", pub, tag.String())
		DefineMethod(w, "compareTo", pub, "int", wrapper)
		if tag.Numeric() && tag != typesystem.Char {
			DefineField(w, "MAX_VALUE", psf, tag.String())
			DefineField(w, "MIN_VALUE", psf, tag.String())
		}
		lib.Add(w)
	}
	lib.Add(DefineClass(config.VoidClass, pf, nil, ""))

	math := DefineClass("java/lang/Math", pf, nil, "")
	for _, t := range []string{"int", "long", "float", "double"} {
		DefineMethod(math, "max", ps, t, t, t)
		DefineMethod(math, "min", ps, t, t, t)
		DefineMethod(math, "abs", ps, t, t)
	}
	DefineField(math, "PI", psf, "double")
	DefineField(math, "E", psf, "double")
	lib.Add(math)

	enum := DefineClass(config.EnumClass, abs, []TypeParam{tp("E", "java/lang/Enum<E>")}, "",
		"java/lang/Comparable<E>", config.SerializableClass)
	DefineMethod(enum, "name", pf, "java/lang/String")
	DefineMethod(enum, "ordinal", pf, "int")
	lib.Add(enum)

	lib.Add(DefineClass(config.RecordClass, abs, nil, ""))

	throwable := DefineClass(config.ThrowableClass, pub, nil, "", config.SerializableClass)
	DefineMethod(throwable, config.ConstructorName, pub, "void")
	DefineMethod(throwable, config.ConstructorName, pub, "void", "java/lang/String")
	DefineMethod(throwable, "getMessage", pub, "java/lang/String")
	lib.Add(throwable)
	lib.Add(DefineClass("java/lang/Exception", pub, nil, config.ThrowableClass))
	lib.Add(DefineClass("java/lang/RuntimeException", pub, nil, "java/lang/Exception"))

	iterator := DefineClass("java/util/Iterator", iface, []TypeParam{tp("E")}, "")
	DefineMethod(iterator, "hasNext", abs, "boolean")
	DefineMethod(iterator, "next", abs, "E")
	lib.Add(iterator)

	collection := DefineClass("java/util/Collection", iface, []TypeParam{tp("E")}, "", "java/lang/Iterable<E>")
	DefineMethod(collection, "size", abs, "int")
	DefineMethod(collection, "add", abs, "boolean", "E")
	lib.Add(collection)

	list := DefineClass("java/util/List", iface, []TypeParam{tp("E")}, "", "java/util/Collection<E>")
	DefineMethod(list, "get", abs, "E", "int")
	DefineMethod(list, "set", abs, "E", "int", "E")
	lib.Add(list)

	arrayList := DefineClass("java/util/ArrayList", pub, []TypeParam{tp("E")}, "",
		"java/util/List<E>", config.CloneableClass, config.SerializableClass)
	DefineMethod(arrayList, config.ConstructorName, pub, "void")
	DefineMethod(arrayList, config.ConstructorName, pub, "void", "int")
	DefineMethod(arrayList, "size", pub, "int")
	DefineMethod(arrayList, "add", pub, "boolean", "E")
	DefineMethod(arrayList, "get", pub, "E", "int")
	DefineMethod(arrayList, "set", pub, "E", "int", "E")
	lib.Add(arrayList)

	mapIface := DefineClass("java/util/Map", iface, []TypeParam{tp("K"), tp("V")}, "")
	DefineMethod(mapIface, "get", abs, "V", "java/lang/Object")
	DefineMethod(mapIface, "put", abs, "V", "K", "V")
	entry := DefineClass("java/util/Map$Entry", iface|Static, []TypeParam{tp("K"), tp("V")}, "")
	DefineMethod(entry, "getKey", abs, "K")
	DefineMethod(entry, "getValue", abs, "V")
	mapIface.AddInner(entry)
	lib.Add(mapIface)
	lib.Add(entry)

	hashMap := DefineClass("java/util/HashMap", pub, []TypeParam{tp("K"), tp("V")}, "",
		"java/util/Map<K, V>", config.CloneableClass, config.SerializableClass)
	DefineMethod(hashMap, config.ConstructorName, pub, "void")
	DefineMethod(hashMap, "get", pub, "V", "java/lang/Object")
	DefineMethod(hashMap, "put", pub, "V", "K", "V")
	lib.Add(hashMap)
}
