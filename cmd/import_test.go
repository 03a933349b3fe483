package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moamenhredeen/reqcheck/internal/parser"
	"github.com/moamenhredeen/reqcheck/internal/suite"
)

func TestImportedSuiteLoadsBack(t *testing.T) {
	p, err := parser.ParseFile("../internal/parser/testdata/petstore.yaml")
	require.NoError(t, err)

	s, err := parser.NewCaseBuilder(p).BuildSuite("petstore", "http://localhost:8080", p.Operations())
	require.NoError(t, err)

	data, err := marshalSuite(s)
	require.NoError(t, err)

	loaded, err := suite.Parse(data, "yaml")
	require.NoError(t, err)
	assert.Equal(t, "petstore", loaded.SuiteName)
	require.Len(t, loaded.Cases, len(s.Cases))
	for i := range s.Cases {
		assert.Equal(t, s.Cases[i].CaseID, loaded.Cases[i].CaseID)
		assert.Equal(t, s.Cases[i].Request.Method, loaded.Cases[i].Request.Method)
		assert.Equal(t, s.Cases[i].Request.URL, loaded.Cases[i].Request.URL)
		assert.Len(t, loaded.Cases[i].Assertions, len(s.Cases[i].Assertions))
	}
}
