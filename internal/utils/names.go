package utils

import "strings"

// PackageOf returns the package part of an internal class name:
// "java/util/Map$Entry" -> "java/util". The default package is "".
func PackageOf(class string) string {
	if i := strings.LastIndexByte(class, '/'); i >= 0 {
		return class[:i]
	}
	return ""
}

// ShortName strips the package: "java/util/Map$Entry" -> "Map$Entry".
func ShortName(class string) string {
	return class[strings.LastIndexByte(class, '/')+1:]
}

// SimpleName strips the package and enclosing classes: "java/util/Map$Entry" -> "Entry".
func SimpleName(class string) string {
	short := ShortName(class)
	return short[strings.LastIndexByte(short, '$')+1:]
}

// NestHost returns the top-level class of a nest: everything up to the first
// '$' after the package.
func NestHost(class string) string {
	pkg := len(PackageOf(class))
	if i := strings.IndexByte(class[pkg:], '$'); i >= 0 {
		return class[:pkg+i]
	}
	return class
}

// SameNest reports whether two classes share a nest host.
func SameNest(a, b string) bool {
	return NestHost(a) == NestHost(b)
}

// SamePackage reports whether two classes are declared in the same package.
func SamePackage(a, b string) bool {
	return PackageOf(a) == PackageOf(b)
}

// Qualify joins a package and a short name.
func Qualify(pkg, short string) string {
	if pkg == "" {
		return short
	}
	return pkg + "/" + short
}

// OuterOf returns the directly enclosing class of a nested class, or "".
func OuterOf(class string) string {
	pkg := len(PackageOf(class))
	if i := strings.LastIndexByte(class[pkg:], '$'); i > 0 {
		return class[:pkg+i]
	}
	return ""
}
