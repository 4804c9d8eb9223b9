package postman

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/internal/reflection"
)

// ValueStrategy synthesizes the example value of the index-th property of a resource.
type ValueStrategy interface {
	Value(p *apidoc.Property, index int) string
}

// ValueFunc adapts a function to ValueStrategy.
type ValueFunc func(p *apidoc.Property, index int) string

func (f ValueFunc) Value(p *apidoc.Property, index int) string { return f(p, index) }

// SequentialValues numbers properties per resource: val-1, val-2, ...
func SequentialValues() ValueStrategy {
	return ValueFunc(func(_ *apidoc.Property, index int) string {
		return fmt.Sprintf("val-%d", index+1)
	})
}

// FakeValues produces plausible values for the property type. A zero seed
// draws a random one.
func FakeValues(seed uint64) ValueStrategy {
	return &fakeValues{faker: gofakeit.New(seed)}
}

type fakeValues struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

var timeType = reflect.TypeOf(time.Time{})

func (f *fakeValues) Value(p *apidoc.Property, _ int) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, _ := reflection.ElementType(p.Type)
	if t == timeType {
		return f.faker.PastDate().UTC().Format(time.RFC3339)
	}

	kind := reflect.String
	if t != nil {
		kind = t.Kind()
	} else if k, ok := builtinKinds[elementTypeName(p.TypeName)]; ok {
		kind = k
	}

	switch kind {
	case reflect.Bool:
		return strconv.FormatBool(f.faker.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.Itoa(f.faker.Number(1, 1000))
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(f.faker.Float64Range(0, 1000), 'f', 2, 64)
	default:
		return f.stringFor(p.ID)
	}
}

func (f *fakeValues) stringFor(id string) string {
	name := strings.ToLower(id)
	switch {
	case strings.Contains(name, "email"):
		return f.faker.Email()
	case strings.HasSuffix(name, "id"):
		return f.faker.UUID()
	case strings.Contains(name, "name"):
		return f.faker.Name()
	case strings.Contains(name, "url"):
		return f.faker.URL()
	default:
		return f.faker.Word()
	}
}

// friendlyTypeNames abbreviates common scalar types.
var friendlyTypeNames = map[string]string{
	"int32":   "int",
	"int64":   "long",
	"bool":    "bool",
	"string":  "string",
	"float64": "double",
	"float32": "float",
}

// builtinKinds resolves predeclared type names for properties whose
// reflect.Type was lost, e.g. documentation read back from a file.
var builtinKinds = map[string]reflect.Kind{
	"bool":    reflect.Bool,
	"int":     reflect.Int,
	"int8":    reflect.Int8,
	"int16":   reflect.Int16,
	"int32":   reflect.Int32,
	"int64":   reflect.Int64,
	"uint":    reflect.Uint,
	"uint8":   reflect.Uint8,
	"uint16":  reflect.Uint16,
	"uint32":  reflect.Uint32,
	"uint64":  reflect.Uint64,
	"float32": reflect.Float32,
	"float64": reflect.Float64,
	"string":  reflect.String,
}

// elementTypeName strips pointer, slice and array prefixes from a type name.
func elementTypeName(name string) string {
	for {
		switch {
		case strings.HasPrefix(name, "*"):
			name = name[1:]
		case strings.HasPrefix(name, "[]"):
			name = name[2:]
		case strings.HasPrefix(name, "["):
			_, rest, ok := strings.Cut(name, "]")
			if !ok {
				return name
			}
			name = rest
		default:
			return name
		}
	}
}

// FriendlyTypeName names the type of p for the data entry. Only unnamed
// builtin types are abbreviated; anything else keeps its own name. Without a
// reflect.Type the declared TypeName is looked up instead.
func FriendlyTypeName(p *apidoc.Property) string {
	if p.Type == nil {
		if name, ok := friendlyTypeNames[p.TypeName]; ok {
			return name
		}
		return p.TypeName
	}
	if p.Type.PkgPath() == "" && p.Type.Name() == p.Type.Kind().String() {
		if name, ok := friendlyTypeNames[p.Type.Name()]; ok {
			return name
		}
	}
	if p.TypeName != "" {
		return p.TypeName
	}
	return reflection.GetTypeNameShort(p.Type)
}
