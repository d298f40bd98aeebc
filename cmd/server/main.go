/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/replaydeck/replaydeck/internal/httpserver"
	"github.com/replaydeck/replaydeck/internal/httpserver/handlers"
	"github.com/replaydeck/replaydeck/internal/intelligence"
	"github.com/replaydeck/replaydeck/internal/logger"
	"github.com/replaydeck/replaydeck/internal/project"
	"github.com/replaydeck/replaydeck/internal/replay"
	"github.com/replaydeck/replaydeck/internal/store/firestore"
	"github.com/replaydeck/replaydeck/internal/store/gcs"
	"github.com/replaydeck/replaydeck/internal/telemetry"
	"github.com/replaydeck/replaydeck/pkg/env"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger.Init()
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdownTelemetry()

	credentialsFile := env.ServiceAccountKeyPath.Get()

	blobs, err := gcs.NewBlobStore(ctx, gcs.Options{
		Bucket:          env.BucketName.Get(),
		CredentialsFile: credentialsFile,
	})
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}
	defer blobs.Close()

	docs, err := firestore.NewDocStore(ctx, firestore.Options{
		CredentialsFile: credentialsFile,
	})
	if err != nil {
		return fmt.Errorf("failed to create document store: %w", err)
	}
	defer docs.Close()

	replaySvc := replay.NewService(blobs, docs, env.MaxSessionDuration.Get())
	projectSvc := project.NewService(docs)

	var intelligenceSvc *intelligence.Service
	if env.AnalysisEnabled.Get() {
		completer, err := intelligence.NewCompleterFromEnv()
		if err != nil {
			log.Warn("Analysis disabled: no usable LLM provider", zap.Error(err))
		} else {
			intelligenceSvc = intelligence.NewService(completer, docs, env.AnalysisBatchSize.Get())
		}
	}

	server := httpserver.NewHTTPServer(httpserver.Config{
		BindAddr:       fmt.Sprintf("%s:%d", env.Host.Get(), env.Port.Get()),
		Base:           handlers.NewBase(replaySvc, projectSvc, intelligenceSvc),
		Docs:           docs,
		TracingEnabled: env.TracingEnabled.Get(),
		AuditLog:       httpserver.DefaultAuditLogConfig(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout.Get())
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
