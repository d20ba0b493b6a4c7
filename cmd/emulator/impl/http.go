// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package impl

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/control"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/hollywood/sim"
	"github.com/google/starlet-mini/internal/ipc"
	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HTTP paths served by the emulator.
const (
	HTTPPostCommand = "/ipc/{command:[a-z_]+}"
	HTTPGetStatus   = "/status"
	HTTPGetFrame    = "/framebuffer"
)

// Status is the JSON body returned by HTTPGetStatus.
type Status struct {
	Halt        string `json:"halt"`
	Running     bool   `json:"running"`
	Source      string `json:"source"`
	Dest        string `json:"dest"`
	Iterations  uint64 `json:"iterations"`
	Commands    uint64 `json:"commands"`
	Conversions uint64 `json:"conversions"`
}

// Server exposes the emulated machine over HTTP.
type Server struct {
	hw   *sim.Hollywood
	core *control.Core
	peer *Peer
}

// NewServer creates a new server.
func NewServer(hw *sim.Hollywood, core *control.Core, peer *Peer) *Server {
	return &Server{hw: hw, core: core, peer: peer}
}

// postCommand posts a command to the Starlet as the Broadway would. Address
// commands take the address in the "addr" query parameter.
func (s *Server) postCommand(w http.ResponseWriter, r *http.Request) {
	cmd := mux.Vars(r)["command"]
	if a := r.URL.Query().Get("addr"); a != "" {
		cmd = fmt.Sprintf("%s %s", cmd, a)
	}
	if err := s.post(cmd); err != nil {
		glog.Warningf("failed to post %q: %v", cmd, err)
		http.Error(w, err.Error(), httpForCode(status.Code(err)))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) post(cmd string) error {
	c, err := ipc.ParseCommand(cmd)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.peer.Post(c.Raw); err != nil {
		if errors.Is(err, ipc.ErrBusy) {
			return status.Error(codes.Unavailable, err.Error())
		}
		return err
	}
	return nil
}

// getStatus returns the state of the service loop.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	fb := s.core.Framebuffer()
	st := Status{
		Halt:        s.hw.HaltReason().String(),
		Running:     fb.Running,
		Source:      fb.Source.String(),
		Dest:        fb.Dest.String(),
		Iterations:  s.core.Stats.Iterations.Load(),
		Commands:    s.core.Stats.Commands.Load(),
		Conversions: s.core.Stats.Conversions.Load(),
	}
	b, err := json.Marshal(st)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to convert status to JSON: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		glog.Errorf("w.Write(): %v", err)
	}
}

// getFrame returns the packed destination frame as the Broadway sees it.
func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	b, err := s.frame()
	if err != nil {
		glog.Warningf("failed to read frame: %v", err)
		http.Error(w, err.Error(), httpForCode(status.Code(err)))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(b); err != nil {
		glog.Errorf("w.Write(): %v", err)
	}
}

func (s *Server) frame() ([]byte, error) {
	d := s.core.Framebuffer().Dest
	if !d.IsSet() {
		return nil, status.Error(codes.FailedPrecondition, "destination buffer not set")
	}
	b, err := s.peer.ReadFrame(d.Addr)
	if err != nil {
		if errors.Is(err, hollywood.ErrOutOfRange) || errors.Is(err, hollywood.ErrNullAddress) {
			return nil, status.Error(codes.OutOfRange, err.Error())
		}
		return nil, err
	}
	return b, nil
}

// RegisterHandlers registers HTTP handlers for the emulator endpoints.
func (s *Server) RegisterHandlers(r *mux.Router) {
	r.HandleFunc(HTTPPostCommand, s.postCommand).Methods("POST")
	r.HandleFunc(HTTPGetStatus, s.getStatus).Methods("GET")
	r.HandleFunc(HTTPGetFrame, s.getFrame).Methods("GET")
}

func httpForCode(c codes.Code) int {
	switch c {
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.OutOfRange:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
