// Package openapi builds the OpenAPI 3 document served at
// /api/openapi.json from the routes the server registers and the Go
// types its handlers exchange.
package openapi

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

const bearerScheme = "bearerAuth"

// Operation describes one route.
type Operation struct {
	Method  string
	Path    string // chi pattern, e.g. /api/cats/{id}
	Summary string
	Tag     string
	Auth    bool

	// Request and Response name schemas added with RegisterSchema. A
	// Response starting with "[]" is a list of that schema.
	Request  string
	Response string
	Status   int

	// Query lists optional string query parameters.
	Query []string
	// Errors lists the error statuses the route can return.
	Errors []int
}

// Generator collects schemas and operations and renders the document
// once; it is safe for concurrent use.
type Generator struct {
	title   string
	version string

	mu         sync.RWMutex
	schemas    openapi3.Schemas
	operations []Operation
	cached     *openapi3.T
}

func NewGenerator(title, version string) *Generator {
	return &Generator{
		title:   title,
		version: version,
		schemas: make(openapi3.Schemas),
	}
}

// RegisterSchema derives a JSON schema from value's type and stores it
// under name. customize, when non-nil, may adjust the generated schema.
func (g *Generator) RegisterSchema(name string, value any, customize func(*openapi3.Schema)) error {
	ref, err := openapi3gen.NewSchemaRefForValue(value, nil)
	if err != nil {
		return fmt.Errorf("openapi: schema for %s: %w", name, err)
	}
	if customize != nil {
		customize(ref.Value)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.schemas[name] = &openapi3.SchemaRef{Value: ref.Value}
	g.cached = nil
	return nil
}

func (g *Generator) AddOperation(op Operation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.operations = append(g.operations, op)
	g.cached = nil
}

// Generate returns the document, building it on first use.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if doc := g.cached; doc != nil {
		g.mu.RUnlock()
		return doc
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached != nil {
		return g.cached
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   g.title,
			Version: g.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: maps.Clone(g.schemas),
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerScheme: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	for _, op := range g.operations {
		item := doc.Paths.Value(op.Path)
		if item == nil {
			item = &openapi3.PathItem{Parameters: pathParameters(op.Path)}
			doc.Paths.Set(op.Path, item)
		}
		item.SetOperation(op.Method, g.operation(op))
	}

	g.cached = doc
	return doc
}

// Handler serves the document as JSON.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(g.Generate()); err != nil {
			http.Error(w, "Failed to encode OpenAPI document", http.StatusInternalServerError)
		}
	}
}

func (g *Generator) operation(op Operation) *openapi3.Operation {
	o := &openapi3.Operation{
		OperationID: operationID(op.Method, op.Path),
		Summary:     op.Summary,
		Responses:   &openapi3.Responses{},
	}
	if op.Tag != "" {
		o.Tags = []string{op.Tag}
	}
	if op.Auth {
		o.Security = &openapi3.SecurityRequirements{{bearerScheme: []string{}}}
	}

	for _, q := range op.Query {
		o.Parameters = append(o.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter(q).WithSchema(openapi3.NewStringSchema()),
		})
	}

	if op.Request != "" {
		o.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(g.ref(op.Request)),
		}
	}

	status := op.Status
	if status == 0 {
		status = http.StatusOK
	}
	resp := openapi3.NewResponse().WithDescription(http.StatusText(status))
	if op.Response != "" {
		resp = resp.WithJSONSchemaRef(g.ref(op.Response))
	}
	o.Responses.Set(fmt.Sprint(status), &openapi3.ResponseRef{Value: resp})

	for _, code := range op.Errors {
		o.Responses.Set(fmt.Sprint(code), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(http.StatusText(code)).
				WithJSONSchemaRef(g.ref("Error")),
		})
	}
	return o
}

// ref points at a registered schema, or at an array of it for "[]Name".
// The value is kept next to the $ref so the document validates without a
// loader pass.
func (g *Generator) ref(name string) *openapi3.SchemaRef {
	if elem, ok := strings.CutPrefix(name, "[]"); ok {
		arr := openapi3.NewArraySchema()
		arr.Items = g.ref(elem)
		return &openapi3.SchemaRef{Value: arr}
	}
	var value *openapi3.Schema
	if s, ok := g.schemas[name]; ok {
		value = s.Value
	}
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: value}
}

func pathParameters(path string) openapi3.Parameters {
	var params openapi3.Parameters
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params = append(params, &openapi3.ParameterRef{
				Value: openapi3.NewPathParameter(strings.Trim(seg, "{}")).WithSchema(openapi3.NewStringSchema()),
			})
		}
	}
	return params
}

// operationID turns "GET /api/cats/{id}" into "getApiCatsId".
func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		for _, part := range strings.FieldsFunc(seg, func(r rune) bool { return r == '.' || r == '-' || r == '_' }) {
			b.WriteString(strings.ToUpper(part[:1]) + part[1:])
		}
	}
	return b.String()
}
