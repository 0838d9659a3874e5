// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada request lleva su logger "scoped" (request_id, method, path)
//     inyectado por el middleware de logging; services lo recuperan con From(ctx).
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Datos sensibles: emails se enmascaran con util.MaskEmail, los códigos de un
//     solo uso y tokens nunca se loguean completos (ver Code).
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Provider("github"))
//	log.Info("resource issued", logger.Phase("RESOURCE_ISSUED"))
package logger
