/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carverauto/netbridge/pkg/config"
	"github.com/carverauto/netbridge/pkg/lifecycle"
	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/observer"
	"github.com/carverauto/netbridge/pkg/version"
)

const defaultConfigPath = "/etc/netbridge/netbridge.json"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "Path to netbridge config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("netbridge", version.Full())
		return nil
	}

	ctx := context.Background()

	cfg := observer.DefaultConfig()
	if err := loadConfig(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  "info",
			Output: "stdout",
		}
	}

	if err := lifecycle.InitializeLogger(logConfig); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("netbridge", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mainLogger.Info().Str("version", version.Full()).Str("config", *configPath).Msg("Starting netbridge")

	svc, err := observer.NewService(cfg, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to create observer: %w", err)
	}

	ctx, cancel := lifecycle.SignalContext(ctx, mainLogger)
	defer cancel()

	return svc.Run(ctx)
}

// loadConfig tolerates a missing file at the default location so the binary
// runs with built-in defaults out of the box.
func loadConfig(ctx context.Context, path string, cfg *observer.Config) error {
	if path == defaultConfigPath && !strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "env") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return cfg.Validate()
		}
	}

	return config.NewConfig(nil).LoadAndValidate(ctx, path, cfg)
}
