package config

// UnitFileExt is the extension of compilation unit declaration files.
const UnitFileExt = ".unit.yaml"

// UnitFileExtensions are all recognized unit file extensions
var UnitFileExtensions = []string{".unit.yaml", ".unit.yml"}

// LibraryIndexExt marks a SQLite library index.
const LibraryIndexExt = ".db"

// Well-known class names. Names are internal (slash-separated) names.
const (
	ObjectClass       = "java/lang/Object"
	StringClass       = "java/lang/String"
	NumberClass       = "java/lang/Number"
	CloneableClass    = "java/lang/Cloneable"
	SerializableClass = "java/io/Serializable"
	EnumClass         = "java/lang/Enum"
	RecordClass       = "java/lang/Record"
	ThrowableClass    = "java/lang/Throwable"
	VoidClass         = "java/lang/Void"
)

// Wrapper classes of the primitive types.
const (
	BooleanClass   = "java/lang/Boolean"
	ByteClass      = "java/lang/Byte"
	CharacterClass = "java/lang/Character"
	ShortClass     = "java/lang/Short"
	IntegerClass   = "java/lang/Integer"
	LongClass      = "java/lang/Long"
	FloatClass     = "java/lang/Float"
	DoubleClass    = "java/lang/Double"
)

// ImplicitPackage is imported on demand into every unit.
const ImplicitPackage = "java/lang"

// Special member names
const (
	ConstructorName       = "<init>"
	StaticInitializerName = "<clinit>"
)

// Built-in directive names
const (
	OverrideDirective            = "Override"
	FunctionalInterfaceDirective = "FunctionalInterface"
	DeprecatedDirective          = "Deprecated"
)

// DefaultMaxNestDepth bounds the enclosing-scope chain.
const DefaultMaxNestDepth = 10

// HasUnitExt reports whether path has a recognized unit file extension.
func HasUnitExt(path string) bool {
	for _, ext := range UnitFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimUnitExt removes a recognized unit extension from name.
func TrimUnitExt(name string) string {
	for _, ext := range UnitFileExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
