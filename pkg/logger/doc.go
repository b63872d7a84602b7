// Package logger builds *slog.Logger instances with consistent defaults and
// attribute names.
//
// New applies functional options on top of a JSON handler at info level, then
// wraps the handler in a ContextHandler that adds attributes pulled from the
// context of each log call. The attribute helpers in attr.go keep key names
// consistent across packages and drop empty IDs.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
//	    logger.WithConfig(cfg.Log),
//	    logger.WithContextExtractors(requestid.LogExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "webhook processed",
//	    logger.EventID(evt.ID),
//	    logger.CustomerID(customerID),
//	)
package logger
