package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"45s"`), &d))
	require.Equal(t, 45*time.Second, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	require.Equal(t, time.Second, d.Duration)

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 2 * time.Minute})
	require.NoError(t, err)
	require.Equal(t, `"2m0s"`, string(b))
}

func TestValidMillis(t *testing.T) {
	require.False(t, ValidMillis(0))
	require.True(t, ValidMillis(1700000000000))
	require.False(t, ValidMillis(MaxMillis+1))
	require.Equal(t, int64(1700000000000), FromMillis(1700000000000).UnixMilli())
}
