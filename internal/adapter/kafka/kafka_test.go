package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/groundwater-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	dt := time.Date(2022, 6, 28, 13, 16, 0, 250_000_000, time.UTC)
	record := domain.FlatRecord{
		VariableName: "Groundwater level above NGVD 1929, feet",
		SiteName:     "KH-65-40-707 (Galveston)",
		DateTime:     dt,
		Value:        -64.58,
		Longitude:    -95.1102778,
		Latitude:     29.39416667,
	}

	msg, err := serializeToMessage(record)
	require.NoError(t, err)

	assert.Equal(t, []byte("KH-65-40-707 (Galveston)|Groundwater level above NGVD 1929, feet"), msg.Key)
	assert.Contains(t, string(msg.Value), `"site_name":"KH-65-40-707 (Galveston)"`)
	assert.Contains(t, string(msg.Value), `"value":-64.58`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "variable_name", msg.Headers[0].Key)
	assert.Equal(t, []byte(record.VariableName), msg.Headers[0].Value)
	assert.Equal(t, "datetime", msg.Headers[1].Key)
	assert.Equal(t, []byte("2022-06-28 13:16:00.250"), msg.Headers[1].Value)

	var roundtrip domain.FlatRecord
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, record, roundtrip)
}

func TestMessageKey_SameSeriesSameKey(t *testing.T) {
	a := domain.FlatRecord{VariableName: "v", SiteName: "s", DateTime: time.Unix(0, 0)}
	b := domain.FlatRecord{VariableName: "v", SiteName: "s", DateTime: time.Unix(3600, 0)}
	assert.Equal(t, messageKey(a), messageKey(b))
}
