// Package members provides the reflected member cache used by documentation enrichment.
//
// A member is a serializable field of a request or embedded type. Member sets are
// computed once per type and memoized; the cache is injected into the enrichment
// engines rather than held in package state.
package members

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gaborage/introspec/internal/reflection"
)

// Member describes one serializable field of a type.
type Member struct {
	Name  string              // serialized name, the property id
	Owner reflect.Type        // type the member set was requested for
	Field reflect.StructField // declaring struct field
	Index []int               // index sequence for reflect.Value.FieldByIndex
	Type  reflect.Type        // declared value type
}

// Cache returns the ordered member set of a type.
type Cache interface {
	Members(t reflect.Type) []Member
}

// SyncCache is a Cache safe for concurrent use. Concurrent lookups of the same
// type share one computation and an entry is published only once complete.
type SyncCache struct {
	entries sync.Map // reflect.Type -> []Member
	group   singleflight.Group
	collect func(reflect.Type) []Member
}

var _ Cache = (*SyncCache)(nil)

// New creates an empty member cache.
func New() *SyncCache {
	return &SyncCache{collect: Collect}
}

// Members returns a copy of the cached member set for t, computing it on first use.
// Pointer types resolve to their element; non-struct types have no members.
func (c *SyncCache) Members(t reflect.Type) []Member {
	t = reflection.Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	if v, ok := c.entries.Load(t); ok {
		return clone(v.([]Member))
	}

	v, _, _ := c.group.Do(cacheKey(t), func() (any, error) {
		if v, ok := c.entries.Load(t); ok {
			return v, nil
		}
		actual, _ := c.entries.LoadOrStore(t, c.collect(t))
		return actual, nil
	})
	return clone(v.([]Member))
}

// Len returns the number of cached types.
func (c *SyncCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// cacheKey identifies t by its runtime type descriptor. Names are not unique:
// function-local types in one package share PkgPath and String.
func cacheKey(t reflect.Type) string {
	return fmt.Sprintf("%p", t)
}

func clone(in []Member) []Member {
	if in == nil {
		return nil
	}
	out := make([]Member, len(in))
	copy(out, in)
	return out
}

type candidate struct {
	Member
	depth int
}

// Collect computes the member set of t without caching. Fields promoted from
// anonymous structs are flattened; when names collide the shallowest field wins
// and keeps the position of the first occurrence.
func Collect(t reflect.Type) []Member {
	t = reflection.Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var found []candidate
	walk(t, t, nil, 0, make(map[reflect.Type]bool), &found)

	positions := make(map[string]int, len(found))
	out := make([]Member, 0, len(found))
	depths := make([]int, 0, len(found))
	for _, c := range found {
		if i, ok := positions[c.Name]; ok {
			if c.depth < depths[i] {
				out[i] = c.Member
				depths[i] = c.depth
			}
			continue
		}
		positions[c.Name] = len(out)
		out = append(out, c.Member)
		depths = append(depths, c.depth)
	}
	return out
}

func walk(owner, t reflect.Type, index []int, depth int, visiting map[reflect.Type]bool, found *[]candidate) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldIndex := append(append(make([]int, 0, len(index)+1), index...), i)

		if field.Anonymous {
			jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if jsonName == "-" {
				continue
			}
			ft := reflection.Indirect(field.Type)
			if jsonName == "" && ft.Kind() == reflect.Struct {
				walk(owner, ft, fieldIndex, depth+1, visiting, found)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}
		name, ok := reflection.SerializedName(field)
		if !ok {
			continue
		}

		*found = append(*found, candidate{
			Member: Member{
				Name:  name,
				Owner: owner,
				Field: field,
				Index: fieldIndex,
				Type:  field.Type,
			},
			depth: depth,
		})
	}
}
