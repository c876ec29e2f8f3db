package adapter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/stackmut/internal/adapter"
	m "gooze.dev/pkg/stackmut/internal/model"
)

const calcListing = `class: com/example/Calc
source: Calc.java
methods:
  - name: add
    descriptor: (II)I
    instructions:
      - {op: ILOAD, var: 1, line: 3}
      - {op: ILOAD, var: 2, line: 3}
      - {op: IADD, line: 3}
      - {op: IRETURN, line: 3}
  - name: isPositive
    descriptor: (I)Z
    instructions:
      - {op: ILOAD, var: 1, line: 7}
      - {op: IFLE, target: L0, line: 7}
      - {op: PUSH, value: 1, line: 8}
      - {op: IRETURN, line: 8}
      - {op: LABEL, target: L0}
      - {op: ICONST_0, line: 10}
      - {op: IRETURN, line: 10}
`

func TestYAMLListingAdapter_Decode(t *testing.T) {
	listing := adapter.NewYAMLListingAdapter()

	class, err := listing.Decode(context.Background(), []byte(calcListing))
	require.NoError(t, err)

	assert.Equal(t, "com/example/Calc", class.Name)
	require.Len(t, class.Methods, 2)

	add := class.Methods[0]
	assert.Equal(t, "com/example/Calc", add.Class)
	assert.Equal(t, "(II)I", add.Descriptor)
	require.Len(t, add.Instructions, 4)
	assert.Equal(t, m.OpIAdd, add.Instructions[2].Op)
	assert.Equal(t, 3, add.Instructions[2].Line)

	branch := class.Methods[1].Instructions[1]
	assert.Equal(t, m.OpIfLe, branch.Op)
	assert.Equal(t, "L0", branch.Target)
}

func TestYAMLListingAdapter_Decode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing class name", content: "methods: []\n"},
		{name: "unnamed method", content: "class: A\nmethods:\n  - descriptor: ()V\n"},
		{name: "unknown field", content: "class: A\nflavour: sweet\n"},
		{name: "unknown opcode", content: "class: A\nmethods:\n  - name: f\n    instructions:\n      - {op: NOPE}\n"},
		{name: "not yaml", content: "class: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.NewYAMLListingAdapter().Decode(context.Background(), []byte(tt.content))
			require.Error(t, err)
		})
	}
}

func TestYAMLListingAdapter_EncodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	listing := adapter.NewYAMLListingAdapter()

	class, err := listing.Decode(ctx, []byte(calcListing))
	require.NoError(t, err)

	add, ok := class.Method("add", "(II)I")
	require.True(t, ok)

	add.Instructions[2] = m.Insn(m.OpISub).WithLine(3)
	mutated := class.WithMethod(add)

	encoded, err := listing.Encode(ctx, mutated)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "ISUB")

	decoded, err := listing.Decode(ctx, encoded)
	require.NoError(t, err)

	assert.Equal(t, mutated, decoded)
}

func TestYAMLListingAdapter_Load(t *testing.T) {
	ctx := context.Background()
	listing := adapter.NewYAMLListingAdapter()
	path := filepath.Join(t.TempDir(), "Calc.listing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(calcListing), 0o600))

	class, err := listing.Load(ctx, m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "com/example/Calc", class.Name)

	_, err = listing.Load(ctx, m.Path(filepath.Join(t.TempDir(), "missing.listing.yaml")))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLListingAdapter_CancelledContext(t *testing.T) {
	listing := adapter.NewYAMLListingAdapter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := listing.Decode(ctx, []byte(calcListing))
	require.ErrorIs(t, err, context.Canceled)

	_, err = listing.Encode(ctx, m.Class{Name: "A"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestYAMLListingAdapter_Render(t *testing.T) {
	class, err := adapter.NewYAMLListingAdapter().Decode(context.Background(), []byte(calcListing))
	require.NoError(t, err)

	rendered := adapter.NewYAMLListingAdapter().Render(class.Methods[1])

	assert.Contains(t, rendered, "com/example/Calc.isPositive(I)Z\n")
	assert.Contains(t, rendered, "   1  IFLE L0")
	assert.Contains(t, rendered, "// line 7")
	assert.Contains(t, rendered, "   4  LABEL L0\n")
}

func TestYAMLListingAdapter_LoadsExamples(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*", "*"+adapter.ListingSuffix))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	listing := adapter.NewYAMLListingAdapter()

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			class, err := listing.Load(context.Background(), m.Path(path))
			require.NoError(t, err)

			for _, method := range class.Methods {
				_, err := m.SequenceEffect(method.Instructions)
				assert.NoError(t, err, method.Ref().String())
			}
		})
	}
}
