package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/testutil"
	"github.com/gabaylakad/backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	device := testutil.NewDeviceBuilder().WithOwner(user).Build(t, ts.DB.DB)

	t.Run("persists and rounds coordinates", func(t *testing.T) {
		body := map[string]interface{}{
			"deviceId":  device.ID.String(),
			"latitude":  10.31571239,
			"longitude": 123.88542351,
			"city":      "Cebu City",
		}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/locations"), body, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var sample domain.LocationSample
		testutil.AssertJSONResponse(t, resp, &sample)
		assert.Equal(t, 10.315712, sample.Latitude)
		assert.Equal(t, 123.885424, sample.Longitude)
		assert.False(t, sample.RecordedAt.IsZero())
	})

	t.Run("someone else's device reads as missing", func(t *testing.T) {
		_, otherToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)

		body := map[string]interface{}{
			"deviceId":  device.ID.String(),
			"latitude":  10.31,
			"longitude": 123.89,
		}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/locations"), body, otherToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/locations"), map[string]interface{}{}, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestLocationHandler_DeviceHistoryAndLatest(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	device := testutil.NewDeviceBuilder().WithOwner(user).Build(t, ts.DB.DB)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		testutil.NewLocationBuilder().
			ForDevice(device).
			At(10.31+float64(i)*0.001, 123.89).
			RecordedAt(base.Add(time.Duration(i) * time.Minute)).
			Build(t, ts.DB.DB)
	}

	t.Run("history is newest first", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "GET",
			ts.APIURL("/devices/"+device.ID.String()+"/locations"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var samples []domain.LocationSample
		testutil.AssertJSONResponse(t, resp, &samples)
		require.Len(t, samples, 5)
		for i := 1; i < len(samples); i++ {
			assert.True(t, !samples[i].RecordedAt.After(samples[i-1].RecordedAt),
				"samples must be ordered newest first")
		}
	})

	t.Run("latest returns the most recent sample", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "GET",
			ts.APIURL("/devices/"+device.ID.String()+"/locations/latest"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var sample domain.LocationSample
		testutil.AssertJSONResponse(t, resp, &sample)
		assert.InDelta(t, 10.314, sample.Latitude, 1e-9)
	})

	t.Run("latest on an empty device is not found", func(t *testing.T) {
		empty := testutil.NewDeviceBuilder().WithOwner(user).Build(t, ts.DB.DB)

		req := testutil.CreateAuthenticatedRequest(t, "GET",
			ts.APIURL("/devices/"+empty.ID.String()+"/locations/latest"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func TestWebSocket_LocationRoundTrip(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	device := testutil.NewDeviceBuilder().WithOwner(user).Build(t, ts.DB.DB)

	listener := testutil.NewWSClient(t, ts.WebSocketURL(token))
	feed := testutil.NewWSClient(t, ts.WebSocketURL(token))

	feed.PublishLocation(domain.LocationSample{
		DeviceID:  device.ID,
		Latitude:  10.3157,
		Longitude: 123.8854,
		City:      "Cebu City",
	})

	msg := listener.WaitForMessage(websocket.MessageTypeLocationUpdate, 5*time.Second)

	var payload websocket.LocationUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, device.ID, payload.Sample.DeviceID)
	assert.Equal(t, 10.3157, payload.Sample.Latitude)

	// The published sample is also persisted.
	latest, err := ts.Repos.Location.LatestByDeviceID(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.3157, latest.Latitude)
}

func TestHTTPCreateBroadcastsToListeners(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	device := testutil.NewDeviceBuilder().WithOwner(user).Build(t, ts.DB.DB)

	listener := testutil.NewWSClient(t, ts.WebSocketURL(token))

	body := map[string]interface{}{
		"deviceId":  device.ID.String(),
		"latitude":  10.32,
		"longitude": 123.9,
	}
	req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/locations"), body, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	msg := listener.WaitForMessage(websocket.MessageTypeLocationUpdate, 5*time.Second)

	var payload websocket.LocationUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, device.ID, payload.Sample.DeviceID)
}
