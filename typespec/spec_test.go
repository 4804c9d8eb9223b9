package typespec

import (
	"net/http"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/introspec/apidoc"
)

type createOrder struct {
	Item string `json:"item"`
}

type listOrders struct{}

func codeKey(c apidoc.StatusCode) string { return strconv.Itoa(c.Code) }

func identity(s string) string { return s }

func TestVerbedResolve(t *testing.T) {
	s := For[createOrder]().
		AddContentTypes("application/json").
		AddVerbContentTypes("get", "text/html", "application/json").
		AddStatusCodes(apidoc.StatusCode{Code: 200}).
		AddVerbStatusCodes(http.MethodPut, apidoc.StatusCode{Code: 201})

	t.Run("global only", func(t *testing.T) {
		assert.Equal(t, []string{"application/json"}, s.ContentTypes.Resolve("DELETE", identity))
	})

	t.Run("global first then verb specific", func(t *testing.T) {
		assert.Equal(t, []string{"application/json", "text/html"}, s.ContentTypes.Resolve("GET", identity))
	})

	t.Run("verb matching is case-insensitive", func(t *testing.T) {
		codes := s.StatusCodes.Resolve("put", codeKey)
		require.Len(t, codes, 2)
		assert.Equal(t, 200, codes[0].Code)
		assert.Equal(t, 201, codes[1].Code)
	})

	t.Run("nothing registered", func(t *testing.T) {
		assert.Nil(t, s.RelativePaths.Resolve("GET", identity))
	})
}

func TestNotesFor(t *testing.T) {
	s := For[createOrder]().AddRouteNotes("GlobalNotes").AddVerbRouteNotes("get", "Verb notes")

	assert.Equal(t, "Verb notes", s.NotesFor("GET"))
	assert.Equal(t, "GlobalNotes", s.NotesFor("PUT"))
	assert.Equal(t, "", For[listOrders]().NotesFor("GET"))
}

func TestSpecBuilder(t *testing.T) {
	s := For[*createOrder]().
		WithTitle("Create order").
		WithDescription("places an order").
		WithCategory("orders").
		WithTags("write", "orders").
		WithProperty("item", PropertySpec{Title: "Item", IsRequired: apidoc.Bool(true)})

	assert.Equal(t, reflect.TypeOf(createOrder{}), s.Type)
	assert.Equal(t, "Create order", s.Title)
	assert.Equal(t, []string{"write", "orders"}, s.Tags)

	p, ok := s.Property("missing", "item")
	require.True(t, ok)
	assert.Equal(t, "Item", p.Title)
	_, ok = s.Property("Item")
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(For[createOrder](), For[listOrders]()))

	s, ok := reg.Lookup(reflect.TypeOf(&createOrder{}))
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(createOrder{}), s.Type)

	_, ok = reg.Lookup(reflect.TypeOf(0))
	assert.False(t, ok)
	_, ok = reg.Lookup(nil)
	assert.False(t, ok)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []reflect.Type{reflect.TypeOf(createOrder{}), reflect.TypeOf(listOrders{})}, reg.Types())

	err := reg.Register(For[createOrder]())
	assert.ErrorIs(t, err, ErrDuplicateSpec)
	assert.ErrorIs(t, reg.Register(nil), ErrNoType)

	var nilReg *Registry
	_, ok = nilReg.Lookup(reflect.TypeOf(createOrder{}))
	assert.False(t, ok)
}

func TestMustRegisterPanics(t *testing.T) {
	reg := NewRegistry().MustRegister(For[createOrder]())
	assert.Panics(t, func() { reg.MustRegister(For[createOrder]()) })
}
