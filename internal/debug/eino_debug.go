// Package debug starts the eino visual debug server for the extraction chain.
package debug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/config"
)

type EinoDebugger struct {
	config *config.Config
	logger logrus.FieldLogger
}

func NewEinoDebugger(cfg *config.Config, logger logrus.FieldLogger) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		logger: logger,
	}
}

// Initialize registers the devops server. It must run before any chain is
// compiled so the chain shows up in the debugger.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.IsEnabled() {
		return nil
	}

	d.logger.WithField("port", d.config.EinoDebugPort).Debug("initializing eino debug plugin")

	port := strconv.Itoa(d.config.EinoDebugPort)
	if err := devops.Init(ctx, devops.WithDevServerPort(port)); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}

	d.logger.WithField("url", d.GetDebugURL()).Info("eino debug server started")
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.IsEnabled() {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
