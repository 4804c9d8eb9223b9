// Package reflection provides internal reflection helpers shared by route registration
// and documentation enrichment.
package reflection

import (
	"reflect"
	"runtime"
	"strings"
)

var (
	callerFn    = runtime.Caller
	funcForPCFn = runtime.FuncForPC
)

// binderTags are the struct tags echo reads when binding a request, in precedence order.
var binderTags = []string{"param", "query", "header", "form"}

// GetCallerPackage extracts the package path of the calling function.
// The skip parameter is relative to the caller of GetCallerPackage.
func GetCallerPackage(skip int) string {
	pc, _, _, ok := callerFn(skip + 1)
	if !ok {
		return ""
	}

	fn := funcForPCFn(pc)
	if fn == nil {
		return ""
	}

	return extractPackageFromName(fn.Name())
}

// ExtractHandlerName gets the function name from a handler function
func ExtractHandlerName(handler any) string {
	if handler == nil {
		return ""
	}

	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return ""
	}

	fn := funcForPCFn(v.Pointer())
	if fn == nil {
		return ""
	}

	return extractHandlerNameFromName(fn.Name())
}

// GetTypeName returns the fully qualified type name
func GetTypeName(t reflect.Type) string {
	t = Indirect(t)
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// GetTypeNameShort returns just the type name without package path
func GetTypeNameShort(t reflect.Type) string {
	t = Indirect(t)
	if t == nil {
		return ""
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// Indirect strips any number of pointer indirections.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// ElementType unwraps pointers, slices, arrays and map values down to the type
// that actually carries the documented shape. multiple reports whether a
// collection was unwrapped on the way. Byte slices are treated as scalars.
func ElementType(t reflect.Type) (elem reflect.Type, multiple bool) {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer:
			t = t.Elem()
		case reflect.Slice, reflect.Array:
			if t.Elem().Kind() == reflect.Uint8 {
				return t, multiple
			}
			t = t.Elem()
			multiple = true
		case reflect.Map:
			t = t.Elem()
			multiple = true
		default:
			return t, multiple
		}
	}
	return nil, multiple
}

// IsSystemType reports whether t is a primitive or standard-library type that
// must not be documented as an embedded resource.
func IsSystemType(t reflect.Type) bool {
	t, _ = ElementType(t)
	if t == nil {
		return true
	}

	if t.Kind() == reflect.Struct {
		return IsStdlibPackage(t.PkgPath())
	}
	return true
}

// IsStdlibPackage reports whether pkgPath belongs to the Go standard library.
// Anonymous types have an empty package path and are not considered stdlib.
func IsStdlibPackage(pkgPath string) bool {
	if pkgPath == "" {
		return false
	}
	first, _, _ := strings.Cut(pkgPath, "/")
	return !strings.Contains(first, ".")
}

// SerializedName returns the name a struct field is exchanged under and whether
// it takes part in (de)serialization at all. The json name wins, then the first
// binder tag, then the Go field name. A json:"-" field only participates when a
// binder tag names it.
func SerializedName(field reflect.StructField) (string, bool) {
	if !field.IsExported() && !field.Anonymous {
		return "", false
	}

	jsonName, skipped := jsonTagName(field.Tag.Get("json"))
	if jsonName != "" {
		return jsonName, true
	}

	for _, tag := range binderTags {
		if name, _, _ := strings.Cut(field.Tag.Get(tag), ","); name != "" && name != "-" {
			return name, true
		}
	}

	if skipped {
		return "", false
	}
	return field.Name, true
}

func jsonTagName(tag string) (name string, skipped bool) {
	if tag == "" {
		return "", false
	}
	name, _, _ = strings.Cut(tag, ",")
	if name == "-" {
		return "", true
	}
	return name, false
}

func extractPackageFromName(name string) string {
	lastSlash := strings.LastIndex(name, "/")
	if lastSlash >= 0 {
		remaining := name[lastSlash+1:]
		if dot := strings.Index(remaining, "."); dot >= 0 {
			return name[:lastSlash+1+dot]
		}
	}

	if dot := strings.LastIndex(name, "."); dot >= 0 {
		packagePart := name[:dot]
		if parenIndex := strings.LastIndex(packagePart, "("); parenIndex >= 0 {
			if dotIndex := strings.LastIndex(packagePart[:parenIndex], "."); dotIndex >= 0 {
				return packagePart[:dotIndex]
			}
		}
		return packagePart
	}

	return ""
}

func extractHandlerNameFromName(name string) string {
	if lastDot := strings.LastIndex(name, "."); lastDot >= 0 {
		return name[lastDot+1:]
	}
	return name
}
