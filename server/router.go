// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

var errAlreadyReserved = errors.New("route is either already aliased or already maps to a handle")

type router struct {
	lock   sync.RWMutex
	router *mux.Router

	routes map[string]map[string]http.Handler // base -> endpoint -> handler
}

func newRouter() *router {
	return &router{
		router: mux.NewRouter(),
		routes: make(map[string]map[string]http.Handler),
	}
}

func (r *router) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	r.router.ServeHTTP(writer, request)
}

func (r *router) AddRouter(base, endpoint string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	endpoints := r.routes[base]
	if endpoints == nil {
		endpoints = make(map[string]http.Handler)
	}
	if _, exists := endpoints[endpoint]; exists {
		return fmt.Errorf("%w: %s%s", errAlreadyReserved, base, endpoint)
	}
	endpoints[endpoint] = handler
	r.routes[base] = endpoints
	r.router.Handle(base+endpoint, handler)
	return nil
}
