package analysts

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	ecmodel "github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"
)

// newLogCallback reports chain node progress and model token usage.
func newLogCallback(logger logrus.FieldLogger) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			logger.WithFields(runFields(info)).Debug("chain node start")
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			entry := logger.WithFields(runFields(info))
			if info != nil && info.Component == components.ComponentOfChatModel {
				if out := ecmodel.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
					entry = entry.WithFields(logrus.Fields{
						"prompt_tokens":     out.TokenUsage.PromptTokens,
						"completion_tokens": out.TokenUsage.CompletionTokens,
					})
				}
			}
			entry.Debug("chain node end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			logger.WithFields(runFields(info)).WithError(err).Warn("chain node failed")
			return ctx
		}).
		Build()
}

func runFields(info *callbacks.RunInfo) logrus.Fields {
	if info == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"node":      info.Name,
		"component": string(info.Component),
	}
}
