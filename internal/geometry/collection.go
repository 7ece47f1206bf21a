package geometry

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Collection groups the geometry produced by a single operation.
type Collection struct {
	Points   []ColoredPoint `json:"points,omitempty"`
	Lines    []Line         `json:"lines,omitempty"`
	Polygons []Polygon      `json:"polygons,omitempty"`
	Circles  []Circle       `json:"circles,omitempty"`
}

// Len returns the total number of primitives in the collection.
func (c *Collection) Len() int {
	return len(c.Points) + len(c.Lines) + len(c.Polygons) + len(c.Circles)
}

// WriteCBOR encodes the collection as a single CBOR item.
func (c *Collection) WriteCBOR(w io.Writer) error {
	if err := cbor.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}
	return nil
}

// SaveCBOR writes the collection to path, replacing any existing file.
func (c *Collection) SaveCBOR(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create geometry file: %w", err)
	}
	if err := c.WriteCBOR(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCBOR decodes a collection previously written with WriteCBOR.
func ReadCBOR(r io.Reader) (*Collection, error) {
	var c Collection
	if err := cbor.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}
	return &c, nil
}
