// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"

	"github.com/MattchuPichuu/WarDaddy/pkg/common"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// SetupTelemetry installs a zipkin-exporting tracer provider and the trace
// context propagators. Returns a shutdown function that flushes spans.
//
// When telemetry is disabled the global no-op provider stays in place.
func SetupTelemetry(ctx context.Context, enabled bool, endpoint, serviceName, environment string, id int) (func(context.Context) error, error) {
	// B3 for zipkin peers, W3C for everything else
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			b3.New(),
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	logrus.Infof("set text map propagator")

	if !enabled {
		logrus.Info("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	tracerProvider, err := common.NewTracerProvider(endpoint, serviceName, environment, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	logrus.Infof("set tracer provider: (name: %s environment: %s id: %d)", serviceName, environment, id)

	shutdown := func(ctx context.Context) error {
		logrus.Info("shutting down telemetry...")
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
		logrus.Info("telemetry stopped")
		return nil
	}

	return shutdown, nil
}
