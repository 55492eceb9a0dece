package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const registryContentType = "application/vnd.schemaregistry.v1+json"

// SchemaRegistryClient registers and looks up JSON schemas in a Confluent Schema Registry.
type SchemaRegistryClient struct {
	http *resty.Client
}

// NewSchemaRegistryClient constructs a client for the registry at baseURL.
func NewSchemaRegistryClient(baseURL string) *SchemaRegistryClient {
	return &SchemaRegistryClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10*time.Second).
			SetHeader("Accept", registryContentType),
	}
}

// EnsureSchema returns the id of the latest version of subject. Only a subject
// the registry does not know is registered; any other failure is returned.
func (c *SchemaRegistryClient) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("subject", subject).
		Get("/subjects/{subject}/versions/latest")
	if err != nil {
		return 0, fmt.Errorf("schema registry: %w", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		return schemaID(resp)
	}

	body, err := json.Marshal(map[string]string{"schemaType": "JSON", "schema": schema})
	if err != nil {
		return 0, err
	}
	resp, err = c.http.R().
		SetContext(ctx).
		SetPathParam("subject", subject).
		SetHeader("Content-Type", registryContentType).
		SetBody(body).
		Post("/subjects/{subject}/versions")
	if err != nil {
		return 0, fmt.Errorf("schema registry: %w", err)
	}
	return schemaID(resp)
}

func schemaID(resp *resty.Response) (int, error) {
	if resp.IsError() {
		req := resp.Request.RawRequest
		return 0, fmt.Errorf("schema registry %s %s: %d %s", req.Method, req.URL.Path, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	var ref struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &ref); err != nil {
		return 0, fmt.Errorf("schema registry: decode id: %w", err)
	}
	return ref.ID, nil
}
