package serialization

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSuite = `
suite:
  baseUrl: http://localhost:8080
  timeout: 2s
  concurrency: 4
  strict: true
  headers:
    Authorization: Bearer shared-token
  operations:
    - operation: getProduct
      params:
        id: 42
      headers:
        X-Tenant: tenant-a
    - operation: createProduct
      body:
        name: fixture widget
        price: 2.5
        dimensions:
          w: 10
          h: 20
    - operation: deleteProduct
      skip: true
`

func TestLoadSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSuite), 0o644))

	suite, err := LoadSuite(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", suite.BaseURL)
	assert.Equal(t, 4, suite.Concurrency)
	assert.True(t, suite.Strict)
	require.Len(t, suite.Operations, 3)

	timeout, err := suite.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
}

func TestLoadSuiteMissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSuiteOverrides(t *testing.T) {
	suite, err := ParseSuite([]byte(sampleSuite))
	require.NoError(t, err)

	overrides, skip, err := suite.Overrides()
	require.NoError(t, err)

	t.Run("params and merged headers", func(t *testing.T) {
		ov := overrides["getProduct"]
		require.NotNil(t, ov)
		assert.Equal(t, 42, ov.Params["id"])
		// Suite-level headers apply, per-operation headers win on conflict.
		assert.Equal(t, "Bearer shared-token", ov.Headers["Authorization"])
		assert.Equal(t, "tenant-a", ov.Headers["X-Tenant"])
	})

	t.Run("yaml body becomes a JSON body", func(t *testing.T) {
		ov := overrides["createProduct"]
		require.NotNil(t, ov)
		assert.JSONEq(t, `{"name": "fixture widget", "price": 2.5, "dimensions": {"w": 10, "h": 20}}`,
			string(ov.Body))
	})

	t.Run("skip set", func(t *testing.T) {
		assert.True(t, skip["deleteProduct"])
		assert.False(t, skip["getProduct"])
	})
}

func TestSuiteOverridesRejectsAnonymousEntry(t *testing.T) {
	suite, err := ParseSuite([]byte("suite:\n  operations:\n    - params:\n        id: 1\n"))
	require.NoError(t, err)

	_, _, err = suite.Overrides()
	assert.Error(t, err)
}

func TestSuiteSharedOverrides(t *testing.T) {
	suite := &Suite{Headers: map[string]string{"Authorization": "Bearer x"}}
	shared := suite.SharedOverrides()
	require.NotNil(t, shared)
	assert.Equal(t, "Bearer x", shared.Headers["Authorization"])

	assert.Nil(t, (&Suite{}).SharedOverrides())
}

func TestSuiteTimeoutInvalid(t *testing.T) {
	suite := &Suite{Timeout: "soon"}
	_, err := suite.RequestTimeout()
	assert.Error(t, err)
}
