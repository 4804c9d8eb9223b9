package postman

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gaborage/introspec/apidoc"
)

const (
	jsonContentType    = "application/json"
	defaultContentType = jsonContentType
)

// Generator converts documentation into collections. It is safe for concurrent
// use when its value strategy is.
type Generator struct {
	now    func() time.Time
	newID  func() string
	values ValueStrategy
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc sets the identifier source for collections and requests.
func WithIDFunc(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// WithValues sets the placeholder strategy.
func WithValues(values ValueStrategy) Option {
	return func(g *Generator) { g.values = values }
}

// NewGenerator creates a generator using random UUIDs, the wall clock and
// sequential placeholders.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now:    time.Now,
		newID:  uuid.NewString,
		values: SequentialValues(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds one request per (resource, verb) pair in document order.
func (g *Generator) Generate(doc *apidoc.Documentation) (*Collection, error) {
	if doc == nil {
		return nil, fmt.Errorf("generate collection: nil document: %w", apidoc.ErrInvalidArgument)
	}

	c := &Collection{
		ID:          g.newID(),
		Name:        doc.Title,
		Description: doc.Description,
		Timestamp:   g.now().UnixMilli(),
		Order:       []string{},
		Requests:    []*Request{},
	}

	for _, res := range doc.Resources {
		if res == nil {
			continue
		}
		for _, req := range g.requests(c.ID, doc.BaseURL, res) {
			c.Order = append(c.Order, req.ID)
			c.Requests = append(c.Requests, req)
		}
	}

	return c, nil
}

func (g *Generator) requests(collectionID, baseURL string, res *apidoc.Resource) []*Request {
	accept := "Accept: " + EffectiveContentType(res.ContentTypes)
	params := PathParams(res.RelativePath)
	path := RewritePath(res.RelativePath)
	data := g.data(res.Properties)

	out := make([]*Request, 0, len(res.Verbs))
	for _, verb := range res.Verbs {
		req := &Request{
			ID:           g.newID(),
			CollectionID: collectionID,
			Method:       verb,
			Name:         res.Title,
			Description:  res.Description,
			Headers:      accept,
			Time:         g.now().UnixMilli(),
		}

		if HasRequestBody(verb) {
			req.URL = CombineURL(baseURL, path, "")
			req.DataMode = DataModeParams
			req.Data = slices.Clone(data)
		} else {
			pathData, queryData := splitByPathParams(data, params)
			req.URL = CombineURL(baseURL, path, queryString(queryData))
			req.PathVariables = make(map[string]string, len(pathData))
			for _, d := range pathData {
				req.PathVariables[d.Key] = d.Value
			}
		}

		out = append(out, req)
	}
	return out
}

func (g *Generator) data(props []*apidoc.Property) []Data {
	data := make([]Data, 0, len(props))
	for i, p := range props {
		data = append(data, Data{
			Key:     p.ID,
			Value:   g.values.Value(p, i),
			Type:    FriendlyTypeName(p),
			Enabled: true,
		})
	}
	return data
}

// splitByPathParams separates data whose key names a path parameter
// (case-insensitively) from the rest.
func splitByPathParams(data []Data, params []string) (path, query []Data) {
	for _, d := range data {
		if slices.ContainsFunc(params, func(p string) bool { return strings.EqualFold(p, d.Key) }) {
			path = append(path, d)
		} else {
			query = append(query, d)
		}
	}
	return path, query
}

// EffectiveContentType prefers a JSON content type, then the first declared
// one, then application/json.
func EffectiveContentType(contentTypes []string) string {
	for _, ct := range contentTypes {
		if isJSON(ct) {
			return ct
		}
	}
	if len(contentTypes) > 0 {
		return contentTypes[0]
	}
	return defaultContentType
}

func isJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mediaType = strings.TrimSpace(mediaType)
	return mediaType == jsonContentType || strings.HasSuffix(mediaType, "+json")
}
