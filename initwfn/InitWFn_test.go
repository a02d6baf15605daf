package initwfn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWFnJSONRoundTrip(t *testing.T) {
	glorot, err := NewGlorotU(1.5)
	require.NoError(t, err)

	data, err := json.Marshal(glorot)
	require.NoError(t, err)

	var decoded InitWFn
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, GlorotU, decoded.Type)
	assert.Equal(t, GlorotUConfig{Gain: 1.5}, decoded.Config)
	assert.NotNil(t, decoded.InitWFn())
}
