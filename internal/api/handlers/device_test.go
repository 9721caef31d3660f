package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	t.Run("new serial creates a device", func(t *testing.T) {
		body := map[string]string{"serialNumber": "GL-2000", "nickname": "Lolo's cane"}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/devices"), body, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var device domain.Device
		testutil.AssertJSONResponse(t, resp, &device)
		assert.Equal(t, "GL-2000", device.SerialNumber)
		require.NotNil(t, device.UserID)
		assert.Equal(t, user.ID, *device.UserID)
	})

	t.Run("rebinding your own serial is allowed", func(t *testing.T) {
		body := map[string]string{"serialNumber": "GL-2000", "nickname": "renamed"}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/devices"), body, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var device domain.Device
		testutil.AssertJSONResponse(t, resp, &device)
		assert.Equal(t, "renamed", device.Nickname)
	})

	t.Run("serial held by another user conflicts", func(t *testing.T) {
		_, otherToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)

		body := map[string]string{"serialNumber": "GL-2000"}
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/devices"), body, otherToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})
}

func TestDeviceHandler_OwnershipScoping(t *testing.T) {
	ts := testutil.NewTestServer(t)

	owner, ownerToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	device := testutil.NewDeviceBuilder().WithOwner(owner).Build(t, ts.DB.DB)

	_, otherToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	t.Run("owner sees the device", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "GET",
			ts.APIURL("/devices/"+device.ID.String()), nil, ownerToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("other users get not found, not forbidden", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "GET",
			ts.APIURL("/devices/"+device.ID.String()), nil, otherToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("list is scoped to the caller", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "GET", ts.APIURL("/devices"), nil, otherToken)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var devices []domain.Device
		testutil.AssertJSONResponse(t, resp, &devices)
		assert.Empty(t, devices)
	})
}
