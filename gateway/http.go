// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gateway

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/profile"
)

func parseNetworkId(s string) (keyspace.NetworkId, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("malformed network id %q", s)
	}
	return keyspace.NetworkId(n), nil
}

// HTTPServer exposes an InMemory gateway's read-only surface over plain
// HTTP, routed with mux.Router and mounted as a sub-path router —
// test-only infrastructure so integration tests can exercise the
// gateway surface over a real transport instead of
// only in-process.
type HTTPServer struct {
	backend *InMemory
}

// NewHTTPServer wraps backend for HTTP-mounted access.
func NewHTTPServer(backend *InMemory) *HTTPServer {
	return &HTTPServer{backend: backend}
}

// Mount attaches the gateway's routes under pathPrefix on root.
func (s *HTTPServer) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/key-hash/{hash}/known").Methods(http.MethodGet).HandlerFunc(wrapHandlerFunc(s.handleIsKeyHashKnown))
	sub.Path("/entity/{address}").Methods(http.MethodGet).HandlerFunc(wrapHandlerFunc(s.handleGetOnChainEntity))
}

func wrapHandlerFunc(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(obj)
}

func (s *HTTPServer) handleIsKeyHashKnown(w http.ResponseWriter, r *http.Request) error {
	raw, err := hex.DecodeString(mux.Vars(r)["hash"])
	if err != nil || len(raw) != profile.PublicKeyHashLen {
		http.Error(w, "malformed key hash", http.StatusBadRequest)
		return nil
	}
	var hash profile.PublicKeyHash
	copy(hash[:], raw)

	known, err := s.backend.IsKeyHashKnown(hash)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]bool{"known": known})
}

func (s *HTTPServer) handleGetOnChainEntity(w http.ResponseWriter, r *http.Request) error {
	network := r.URL.Query().Get("network")
	hashHex := mux.Vars(r)["address"]

	raw, err := hex.DecodeString(hashHex)
	if err != nil || len(raw) != profile.PublicKeyHashLen {
		http.Error(w, "malformed address", http.StatusBadRequest)
		return nil
	}
	var hash profile.PublicKeyHash
	copy(hash[:], raw)

	netID, err := parseNetworkId(network)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	addr := profile.Address{Network: netID, PublicKeyHash: hash}
	state, ok, err := s.backend.GetOnChainEntity(addr)
	if err != nil {
		return err
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	return writeJSON(w, map[string]interface{}{
		"securified": state.IsSecurified(),
		"ownerKeys":  len(state.OwnerKeys),
	})
}
