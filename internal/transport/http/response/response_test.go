package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	b, err := json.Marshal(OK(map[string]int{"n": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"code":0,"data":{"n":1}}`, string(b))

	b, err = json.Marshal(Error(CodeConflict, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"code":409,"error":"Conflict"}`, string(b))

	assert.Equal(t, "already friends", Error(CodeConflict, "already friends").Error)
}
