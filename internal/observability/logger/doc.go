// Package logger expone el logger zap del proceso.
//
// Hay un único logger global (Init una vez en main, L en cualquier lado) y cada
// request lleva uno derivado en el contexto con request_id y tenant_id, que se
// obtiene con From(ctx). "prod" emite JSON; el resto, consola.
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "fleethub"})
//	defer logger.Sync()
//
//	logger.From(ctx).Info("module purchased", logger.TenantID(id), logger.ModuleSlug(slug))
package logger
