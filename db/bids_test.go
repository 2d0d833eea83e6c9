package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleBidRow() bidRow {
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	return bidRow{
		ID:            7,
		ApplicationID: 42,
		Status:        "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
		FromUserID:    5,
		FromFirstName: "Oleg",
		FromLastName:  "Sidorov",
	}
}

func TestBidRowPublic(t *testing.T) {
	row := sampleBidRow()
	bid := row.public()

	require.Equal(t, 7, bid.ID)
	require.Equal(t, 42, bid.ApplicationID)
	require.Equal(t, "pending", bid.Status)
	require.Equal(t, "Oleg", bid.From.User.FirstName)
	require.Nil(t, bid.From.Organization)
	require.Nil(t, bid.UpdatedBy)

	require.NoError(t, validateRow(bid))
}

func TestBidRowPublicWithUpdatedBy(t *testing.T) {
	row := sampleBidRow()
	row.Status = "accepted"
	updaterID, first, last := 11, "Anna", "Orlova"
	row.UpdatedByID = &updaterID
	row.UpdatedByFirstName = &first
	row.UpdatedByLastName = &last

	bid := row.public()
	require.NotNil(t, bid.UpdatedBy)
	require.Equal(t, 11, bid.UpdatedBy.ID)
	require.Equal(t, "Anna", bid.UpdatedBy.FirstName)
	require.Equal(t, "Orlova", bid.UpdatedBy.LastName)
	require.NoError(t, validateRow(bid))
}

func TestBidProjectionHidesForeignKeys(t *testing.T) {
	row := sampleBidRow()
	data, err := json.Marshal(row.public())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	require.NotContains(t, raw, "user_id")
	require.NotContains(t, raw, "updated_by_id")
	require.Contains(t, raw, "from")
	require.Contains(t, raw, "application_id")
}
