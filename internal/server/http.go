// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/handler"
	"github.com/sirupsen/logrus"
)

// HTTPServer serves the dashboard REST API.
type HTTPServer struct {
	server *http.Server
	port   int
	api    *handler.API
}

// NewHTTPServer creates a new REST API server instance.
func NewHTTPServer(port int, api *handler.API) *HTTPServer {
	return &HTTPServer{
		port: port,
		api:  api,
	}
}

// Setup mounts the API routes.
func (h *HTTPServer) Setup() error {
	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", h.port),
		Handler:           h.api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return nil
}

// Start begins serving the API on the configured port.
func (h *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("HTTP API listening on port %d", h.port)
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("HTTP API stopped serving: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the API server.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP API...")
	if err := h.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("HTTP API stopped")
	return nil
}
