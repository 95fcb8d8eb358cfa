package backends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/curio-cli/curio/pkg/models"
)

// Registry indexes the shared community catalog, a read-only HTTP endpoint
// serving a JSON index plus raw element files.
type Registry struct {
	baseURL string
	client  *http.Client
}

// registryIndex is the wire format of the catalog's index document.
type registryIndex struct {
	Elements []models.IndexEntry `json:"elements"`
}

// NewRegistry returns the community registry backend.
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Registry) Source() models.Source {
	return models.SourceRegistry
}

// List fetches the catalog index and filters it by element type.
func (r *Registry) List(ctx context.Context, elementType string) ([]models.IndexEntry, error) {
	body, err := r.get(ctx, "index.json")
	if err != nil {
		return nil, err
	}

	var index registryIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, unavailable(models.SourceRegistry, fmt.Errorf("malformed registry index: %w", err))
	}

	entries := make([]models.IndexEntry, 0, len(index.Elements))
	for _, entry := range index.Elements {
		if elementType != "" && entry.Type != elementType {
			continue
		}
		entry.Name = models.NormalizeName(entry.Name)
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *Registry) Fetch(ctx context.Context, key models.ElementKey) (string, error) {
	body, err := r.get(ctx, fmt.Sprintf("elements/%s/%s.md", key.Type, key.Name))
	if err != nil {
		var unavail *UnavailableError
		if errors.As(err, &unavail) && unavail.statusCode == http.StatusNotFound {
			return "", &NotFoundError{Backend: models.SourceRegistry, Key: key}
		}
		return "", err
	}
	return string(body), nil
}

func (r *Registry) get(ctx context.Context, path string) ([]byte, error) {
	u, err := url.JoinPath(r.baseURL, path)
	if err != nil {
		return nil, unavailable(models.SourceRegistry, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable(models.SourceRegistry, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, unavailable(models.SourceRegistry, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{
			Backend:    models.SourceRegistry,
			Err:        fmt.Errorf("registry returned %s for %s", resp.Status, path),
			statusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(models.SourceRegistry, err)
	}
	return body, nil
}
