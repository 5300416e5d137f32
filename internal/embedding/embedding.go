// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns paper text into dense vectors through an
// OpenAI-compatible embeddings endpoint. The service is optional
// infrastructure: when a batch fails the papers in it get zero vectors
// marked Degraded, and the pipeline continues without clustering signal
// for them rather than aborting the run.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// DefaultDimension is the vector width assumed for degraded batches when
// the service never reported a real one.
const DefaultDimension = 768

// Vector is a single embedding. Degraded marks vectors that were
// zero-filled because the service call failed.
type Vector struct {
	Values   []float64
	Degraded bool
}

// IsZero reports whether every component is zero.
func (v Vector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Client calls the embeddings endpoint in batches.
type Client struct {
	client *http.Client
	cfg    types.EmbeddingConfig
}

// NewClient returns a Client for the configured endpoint.
func NewClient(cfg types.EmbeddingConfig) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in order. Failed batches are
// replaced with zero vectors marked Degraded; the returned slice always
// has len(texts) entries. Progress is written to w.
func (c *Client) Embed(ctx context.Context, texts []string, w io.Writer) []Vector {
	if len(texts) == 0 {
		return nil
	}

	vectors := make([]Vector, 0, len(texts))
	dim := c.cfg.Dimension

	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		embs, err := c.embedBatch(ctx, batch)
		if err != nil {
			fmt.Fprintf(w, "embedding batch %d-%d failed, zero-filling: %v\n", start, end, err)
			for range batch {
				vectors = append(vectors, Vector{Values: make([]float64, dim), Degraded: true})
			}
			continue
		}
		for _, e := range embs {
			dim = len(e)
			vectors = append(vectors, Vector{Values: e})
		}
		fmt.Fprintf(w, "embedded %d/%d texts\n", end, len(texts))
	}

	// A batch that failed before the service reported its real width was
	// zero-filled at the configured dimension. Re-fill those at the
	// observed width so callers always get a homogeneous vector set.
	for i, v := range vectors {
		if v.Degraded && len(v.Values) != dim {
			vectors[i].Values = make([]float64, dim)
		}
	}
	return vectors
}

// embedBatch does one POST. A response whose data count does not match
// the batch is an error; partial answers cannot be aligned with inputs.
func (c *Client) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	body, err := json.Marshal(embedRequest{Input: batch, Model: c.cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embeddings API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embeddings API returned %d: %s", resp.StatusCode, data)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Data) != len(batch) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(parsed.Data), len(batch))
	}

	out := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
