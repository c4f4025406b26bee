package app

import (
	redisclient "github.com/platewatch/platewatch-backend/internal/clients/redis"
	"github.com/platewatch/platewatch-backend/internal/clients/socrata"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

type Clients struct {
	Feed  socrata.Client
	Cache redisclient.ResultCache
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	feed, err := socrata.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	return Clients{
		Feed:  feed,
		Cache: redisclient.NewResultCache(log),
	}, nil
}
