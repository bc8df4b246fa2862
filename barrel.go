// Package barrel - curated, versioned reference libraries of registry sequences
package barrel

import (
	"fmt"
	"time"

	"github.com/barreldb/barrel/curator"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/registry"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CuratorConfig settings for initializing a library curator instance
type CuratorConfig struct {
	// RegistryBaseURL sequence registry endpoint base URL
	RegistryBaseURL string
	// ToolName client identity reported to the registry
	ToolName string
	// RequestWindow minimum spacing between outbound registry requests
	RequestWindow time.Duration
	// IndexBuildTool path of the index build tool binary
	IndexBuildTool string
	// WorkDir directory for materialized FASTA files and index outputs
	WorkDir string
	// Lenient downgrade missing-accession and conflict failures to warnings
	Lenient bool
}

/*
NewLibraryCurator initialize a library curator instance.

Each instance is backed by a SQL database; the shared request gate keeps
every registry interaction of the instance within the configured rate.

	@param dbDialector gorm.Dialector - GORM dialector
	@param dbLogLevel logger.LogLevel - SQL log level
	@param config CuratorConfig - curator settings
	@returns new curator instance
*/
func NewLibraryCurator(
	dbDialector gorm.Dialector,
	dbLogLevel logger.LogLevel,
	config CuratorConfig,
) (curator.LibraryCurator, error) {
	// Prepare persistence
	persistence, err := db.NewConnection(dbDialector, dbLogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialized persistence client [%w]", err)
	}

	if config.RequestWindow == 0 {
		config.RequestWindow = time.Second
	}
	gate := registry.NewRequestGate(config.RequestWindow)

	registryClient, err := registry.NewHTTPClient(registry.HTTPClientParams{
		BaseURL:  config.RegistryBaseURL,
		ToolName: config.ToolName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialized registry client [%w]", err)
	}

	fetcher, err := registry.NewFetcher(registry.FetcherParams{
		Client: registryClient, Gate: gate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialized registry fetcher [%w]", err)
	}

	resolver, err := registry.NewTaxonomyResolver(registry.TaxonomyResolverParams{
		Client: registryClient, Gate: gate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialized taxonomy resolver [%w]", err)
	}

	builder, err := curator.NewCommandIndexBuilder(curator.CommandIndexBuilderParams{
		Executable: config.IndexBuildTool,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialized index builder [%w]", err)
	}

	instance, err := curator.NewLibraryCurator(curator.LibraryCuratorParams{
		Persistence: persistence,
		Fetcher:     fetcher,
		Resolver:    resolver,
		Builder:     builder,
		WorkDir:     config.WorkDir,
		Lenient:     config.Lenient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialized library curator [%w]", err)
	}

	return instance, nil
}
