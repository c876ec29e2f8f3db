package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/stackmut/internal/controller"
	controllermocks "gooze.dev/pkg/stackmut/internal/controller/mocks"
	"gooze.dev/pkg/stackmut/internal/domain"
)

func TestCatalogEntries(t *testing.T) {
	entries, err := catalogEntries(domain.MustBuildCatalog())
	require.NoError(t, err)

	byName := make(map[string][]string, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry.Operators
	}

	assert.Len(t, byName["DEFAULTS"], 10)
	assert.Len(t, byName["ROR"], 6)
	assert.Len(t, byName["AOD"], 2)
	assert.Len(t, byName["M1"], 1)
}

func TestMutatorsCmd_DisplaysCatalog(t *testing.T) {
	mockUI := controllermocks.NewMockUI(t)

	originalUI := ui
	ui = mockUI

	t.Cleanup(func() { ui = originalUI })

	mockUI.On("DisplayCatalog", mock.Anything, mock.MatchedBy(func(entries []controller.CatalogEntry) bool {
		return len(entries) == len(catalog.Names())
	})).Return(nil).Once()

	cmd := testRootCmd(newMutatorsCmd())
	cmd.SetArgs([]string{"mutators"})
	require.NoError(t, cmd.Execute())
}
