package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// ListingAdapter decodes class listings into instruction streams and encodes
// mutated streams back. It stands in for a bytecode decoder/encoder.
type ListingAdapter interface {
	// Load reads and decodes the listing at path.
	Load(ctx context.Context, path m.Path) (m.Class, error)
	// Decode parses a listing document.
	Decode(ctx context.Context, content []byte) (m.Class, error)
	// Encode serializes a class back into a listing document.
	Encode(ctx context.Context, class m.Class) ([]byte, error)
	// Render prints a method one instruction per line, for diffs and reports.
	Render(method m.Method) string
}

// YAMLListingAdapter implements ListingAdapter for YAML listings.
type YAMLListingAdapter struct{}

// NewYAMLListingAdapter constructs a YAMLListingAdapter.
func NewYAMLListingAdapter() *YAMLListingAdapter {
	return &YAMLListingAdapter{}
}

// Load reads and decodes the listing at path.
func (a *YAMLListingAdapter) Load(ctx context.Context, path m.Path) (m.Class, error) {
	if err := ctx.Err(); err != nil {
		return m.Class{}, err
	}

	// #nosec G304 - listing paths come from source discovery
	content, err := os.ReadFile(string(path))
	if err != nil {
		return m.Class{}, fmt.Errorf("read listing %s: %w", path, err)
	}

	class, err := a.Decode(ctx, content)
	if err != nil {
		return m.Class{}, fmt.Errorf("decode listing %s: %w", path, err)
	}

	return class, nil
}

// Decode parses a listing document and stamps every method with its class.
func (a *YAMLListingAdapter) Decode(ctx context.Context, content []byte) (m.Class, error) {
	if err := ctx.Err(); err != nil {
		return m.Class{}, err
	}

	var class m.Class

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	if err := decoder.Decode(&class); err != nil {
		return m.Class{}, err
	}

	if strings.TrimSpace(class.Name) == "" {
		return m.Class{}, fmt.Errorf("listing has no class name")
	}

	for i := range class.Methods {
		class.Methods[i].Class = class.Name

		if class.Methods[i].Name == "" {
			return m.Class{}, fmt.Errorf("method %d of %s has no name", i, class.Name)
		}
	}

	return class, nil
}

// Encode serializes a class back into a listing document.
func (a *YAMLListingAdapter) Encode(ctx context.Context, class m.Class) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(class); err != nil {
		return nil, fmt.Errorf("encode listing %s: %w", class.Name, err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode listing %s: %w", class.Name, err)
	}

	return buf.Bytes(), nil
}

// Render prints a method one instruction per line.
func (a *YAMLListingAdapter) Render(method m.Method) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", method.Ref())

	for i, insn := range method.Instructions {
		if insn.Line > 0 {
			fmt.Fprintf(&b, "%4d  %-40s // line %d\n", i, insn, insn.Line)
			continue
		}

		fmt.Fprintf(&b, "%4d  %s\n", i, insn)
	}

	return b.String()
}
