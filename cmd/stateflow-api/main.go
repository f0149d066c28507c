package main

import (
	"context"
	"os"

	"github.com/dukex/stateflow/pkg/channels/kafka"
	"github.com/dukex/stateflow/pkg/cmd"
	"github.com/dukex/stateflow/pkg/executor"
	"github.com/dukex/stateflow/pkg/log"
	"github.com/dukex/stateflow/pkg/otelhelper"
	"github.com/dukex/stateflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort = 9091
	serviceName = "stateflow-api"
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Serve the workflow canvas API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Draft storage URL (file://, postgres://, redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "executor-url",
				Usage:    "Base URL of the workflow-execution service",
				Required: true,
				Sources:  cli.EnvVars("EXECUTOR_URL"),
			},
			&cli.StringFlag{
				Name:    "executor-api-key",
				Usage:   "API key sent to the workflow-execution service",
				Sources: cli.EnvVars("EXECUTOR_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated list of Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "strict-submit",
				Usage:   "Refuse submission on any diagnostic, not only blocking ones",
				Sources: cli.EnvVars("STRICT_SUBMIT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Stateflow API")

			tracer := otelhelper.NoopTracer()

			if command.Bool("tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, serviceName)
				if err != nil {
					return err
				}
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), kafka.ParseBrokers(command.String("kafka-brokers")), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			client := executor.NewClient(
				command.String("executor-url"),
				command.String("executor-api-key"),
				executor.WithTracer(tracer),
				executor.WithLogger(logger),
			)

			workflowService := services.NewWorkflow(persistence, client, eventBus,
				services.WithTracer(tracer),
				services.WithLogger(logger),
				services.WithStrictSubmit(command.Bool("strict-submit")),
			)

			api := NewAPI(logger, workflowService)

			return api.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		logger.Error("Stateflow API stopped", "error", err)
		os.Exit(1)
	}
}
