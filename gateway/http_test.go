// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gateway_test

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/gateway"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/profile"
)

// newMountedServer mounts gateway.HTTPServer's sub-router onto a root
// router, then serves it over a real httptest.Server so the test
// exercises the actual HTTP transport rather than calling the handlers
// in-process.
func newMountedServer(t *testing.T, backend *gateway.InMemory) *httptest.Server {
	t.Helper()
	root := mux.NewRouter()
	gateway.NewHTTPServer(backend).Mount(root, "/gateway")
	return httptest.NewServer(root)
}

func TestHTTPServerIsKeyHashKnown(t *testing.T) {
	backend := gateway.NewInMemory()
	var pub factorsource.PublicKey
	pub[0] = 0x02
	pub[1] = 0x01
	addr := profile.NewAddress(keyspace.NetworkMainnet, pub)
	backend.Seed(gateway.OnChainEntityState{Address: addr, OwnerKeys: []factorsource.PublicKey{pub}})

	srv := newMountedServer(t, backend)
	defer srv.Close()

	hash := profile.HashPublicKey(pub)
	resp, err := http.Get(srv.URL + "/gateway/key-hash/" + hex.EncodeToString(hash[:]) + "/known")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Known bool `json:"known"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Known)

	var unknownHash profile.PublicKeyHash
	unknownHash[0] = 0xff
	resp2, err := http.Get(srv.URL + "/gateway/key-hash/" + hex.EncodeToString(unknownHash[:]) + "/known")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.False(t, body.Known)
}

func TestHTTPServerGetOnChainEntityKnownAndUnknown(t *testing.T) {
	backend := gateway.NewInMemory()
	var pub factorsource.PublicKey
	pub[0] = 0x02
	pub[1] = 0x02
	addr := profile.NewAddress(keyspace.NetworkMainnet, pub)
	backend.Seed(gateway.OnChainEntityState{
		Address:                 addr,
		AccessControllerAddress: &addr,
		OwnerKeys:               []factorsource.PublicKey{pub},
	})

	srv := newMountedServer(t, backend)
	defer srv.Close()

	url := srv.URL + "/gateway/entity/" + hex.EncodeToString(addr.PublicKeyHash[:]) + "?network=1"
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Securified bool `json:"securified"`
		OwnerKeys  int  `json:"ownerKeys"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Securified)
	assert.Equal(t, 1, body.OwnerKeys)

	var missing profile.PublicKeyHash
	missing[0] = 0xee
	resp2, err := http.Get(srv.URL + "/gateway/entity/" + hex.EncodeToString(missing[:]) + "?network=1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
