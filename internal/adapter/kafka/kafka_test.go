package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	total := 24.0
	category := "strong"
	agg := domain.DailyAggregate{
		VariableID:   domain.VarWindSpeed,
		Date:         domain.Date(2023, time.July, 4),
		ReadingCount: 8,
		Average:      12.5,
		Min:          11.0,
		Max:          14.0,
		DerivedTotal: &total,
		Category:     &category,
	}

	msg, err := serializeToMessage(agg)
	require.NoError(t, err)

	assert.Equal(t, "windspeed|2023-07-04", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "windspeed", headers["variable"])
	assert.Equal(t, "2023-07-04", headers["date"])

	var decoded domain.DailyAggregate
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, agg.VariableID, decoded.VariableID)
	assert.Equal(t, agg.Average, decoded.Average)
	require.NotNil(t, decoded.Category)
	assert.Equal(t, "strong", *decoded.Category)
}
