package bootstrap

import (
	"context"
	"fmt"
	"time"

	"pypln-web/internal/config"
	"pypln-web/internal/pipeline"
)

// applyRouterConfig asks the pipeline router where the analysis store
// lives. No answer keeps the configured MongoDB settings.
func (a *App) applyRouterConfig(ctx context.Context) error {
	ch, err := a.MQConn.Channel()
	if err != nil {
		return fmt.Errorf("open router channel failed: %w", err)
	}
	defer ch.Close()

	timeout := time.Duration(a.Config.Router.TimeoutSeconds) * time.Second
	reply, err := pipeline.GetConfigFromRouter(ctx, ch, a.Config.Router.APIQueue, timeout)
	if err != nil {
		return err
	}
	if reply == nil {
		a.Log.Warn("pipeline router did not answer, keeping mongodb settings", "queue", a.Config.Router.APIQueue)
		return nil
	}
	if store, ok := reply["store"].(map[string]any); ok {
		applyStoreConfig(&a.Config.MongoDB, store)
		a.Log.Info("mongodb settings taken from pipeline router", "database", a.Config.MongoDB.Database)
	}
	return nil
}

// applyStoreConfig overrides MongoDB settings with the router's "store"
// section: host, port, database, analysis_collection, gridfs_collection.
func applyStoreConfig(cfg *config.MongoDBConfig, store map[string]any) {
	host, _ := store["host"].(string)
	if host != "" {
		port := 27017
		if p, ok := store["port"].(float64); ok && p > 0 {
			port = int(p)
		}
		cfg.URI = fmt.Sprintf("mongodb://%s:%d", host, port)
	}
	if v, _ := store["database"].(string); v != "" {
		cfg.Database = v
	}
	if v, _ := store["analysis_collection"].(string); v != "" {
		cfg.AnalysisCollection = v
	}
	if v, _ := store["gridfs_collection"].(string); v != "" {
		cfg.GridFSCollection = v
	}
}
