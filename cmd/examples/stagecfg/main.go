package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-stageconfig/pkg/adapters/awsiot"
	"github.com/goliatone/go-stageconfig/pkg/adapters/awslambda"
	"github.com/goliatone/go-stageconfig/pkg/adapters/awss3"
	"github.com/goliatone/go-stageconfig/pkg/adapters/awsssm"
	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/paramstore"
	"github.com/goliatone/go-stageconfig/pkg/mask"
	"github.com/goliatone/go-stageconfig/pkg/stageconfig"
)

// Demonstrates wiring the module against real AWS services: SSM for
// parameter storage, Lambda for restarts, S3 for deployment metadata,
// and IoT for change events.
//
// Usage:
//
//	AWS_REGION=us-east-1 stagecfg <app> <stage> <secret-name> <secret-value>
func main() {
	if len(os.Args) != 5 {
		log.Fatalf("usage: %s <app> <stage> <secret-name> <secret-value>", os.Args[0])
	}
	app, stage, name, value := os.Args[1], os.Args[2], os.Args[3], os.Args[4]

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	cfg := config.Defaults()
	cfg.App = app
	cfg.Stage = stage

	lgr := logger.New()

	var (
		store    paramstore.Store
		api      compute.API
		provider metadata.Provider
	)
	store = awsssm.New(lgr, awsssm.WithConfig(awsssm.Config{Region: region}))
	api = awslambda.New(lgr, awslambda.WithConfig(awslambda.Config{Region: region}))

	// Events go to the IoT topic and to a local audit sink.
	iotChannel := awsiot.New(lgr, awsiot.WithConfig(awsiot.Config{Region: region}))
	auditChannel := broadcaster.Func(func(ctx context.Context, evt broadcaster.Event) error {
		lgr.Info("event published",
			logger.F("topic", evt.Topic),
			logger.F("name", evt.Name),
			logger.F("id", evt.ID))
		return nil
	})
	if bucket := os.Getenv("SST_BOOTSTRAP_BUCKET"); bucket != "" {
		provider = awss3.New(lgr, awss3.WithConfig(awss3.Config{
			Region: region,
			Bucket: bucket,
			Prefix: fmt.Sprintf("stackMetadata/app.%s/stage.%s/", app, stage),
		}))
	}

	module, err := stageconfig.NewModule(stageconfig.ModuleOptions{
		Config:       cfg,
		Store:        store,
		Compute:      api,
		Metadata:     provider,
		Broadcasters: []broadcaster.Broadcaster{iotChannel, auditChannel},
		Logger:       lgr,
	})
	if err != nil {
		log.Fatalf("assemble module: %v", err)
	}

	ctx := context.Background()
	report, err := module.Manager().ApplySecret(ctx, name, value, false)
	if err != nil {
		log.Fatalf("apply secret %s: %v", name, err)
	}
	fmt.Printf("secret %s set to %s\n", name, mask.Value(value))
	fmt.Printf("restarted %d functions, %d sites (%d placeholder, %d edge, %d stale)\n",
		len(report.RestartedFunctions), len(report.RestartedSites),
		len(report.PlaceholderSites), len(report.EdgeSites), len(report.NotFound))

	env, err := module.Manager().Environment(ctx)
	if err != nil {
		log.Fatalf("resolve environment: %v", err)
	}
	for key, val := range mask.Values(env) {
		fmt.Printf("  %s=%s\n", key, val)
	}
}
