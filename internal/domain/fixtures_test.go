package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

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

const counterListing = `class: com/example/Counter
methods:
  - name: next
    descriptor: ()I
    instructions:
      - {op: IINC, var: 1, incr: 1, line: 4}
      - {op: ILOAD, var: 1, line: 5}
      - {op: IRETURN, line: 5}
`

// writeListing stores content under dir and returns it as a discovered source.
func writeListing(t *testing.T, dir, name, content string) m.Source {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return m.Source{
		Origin: &m.File{
			ShortPath: m.Path(name),
			FullPath:  m.Path(path),
			Hash:      "hash-" + name,
		},
	}
}
