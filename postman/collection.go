// Package postman exports documentation as a Postman collection (v1 format).
package postman

// DataModeParams marks request data sent as form parameters.
const DataModeParams = "params"

// Collection is an exported set of requests.
type Collection struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Timestamp   int64      `json:"timestamp"`
	Order       []string   `json:"order"`
	Requests    []*Request `json:"requests"`
}

// Request is one (resource, verb) pair of a collection.
type Request struct {
	ID            string            `json:"id"`
	CollectionID  string            `json:"collectionId"`
	URL           string            `json:"url"`
	Method        string            `json:"method"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Headers       string            `json:"headers"`
	Time          int64             `json:"time"`
	DataMode      string            `json:"dataMode,omitempty"`
	Data          []Data            `json:"data,omitempty"`
	PathVariables map[string]string `json:"pathVariables,omitempty"`
}

// Data is an example value for one property.
type Data struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}
