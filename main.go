package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/histonode/cmd"
	"github.com/smazurov/histonode/internal/api"
	"github.com/smazurov/histonode/internal/config"
	"github.com/smazurov/histonode/internal/device"
	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/frame"
	"github.com/smazurov/histonode/internal/led"
	"github.com/smazurov/histonode/internal/logging"
	"github.com/smazurov/histonode/internal/metrics/exporters"
	"github.com/smazurov/histonode/internal/nvm"
	"github.com/smazurov/histonode/internal/overlay"
	"github.com/smazurov/histonode/internal/pipeline"
	"github.com/smazurov/histonode/internal/slots"
	"github.com/smazurov/histonode/internal/systemd"
	"github.com/smazurov/histonode/internal/telemetry"
	"github.com/smazurov/histonode/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Pipeline settings
	PipelineFPS int `help:"Frames processed per second" default:"30" toml:"pipeline.fps" env:"PIPELINE_FPS"`

	// Simulated camera
	SceneLuminance int  `help:"Scene luminance, 100 is nominal" default:"100" toml:"scene.luminance" env:"SCENE_LUMINANCE"`
	SceneEncode    bool `help:"Start recording instead of previewing" default:"false" toml:"scene.encode" env:"SCENE_ENCODE"`
	SceneISO       int  `help:"Initial sensor ISO" default:"100" toml:"scene.iso" env:"SCENE_ISO"`
	SceneShutter   int  `help:"Initial shutter in microseconds" default:"1500" toml:"scene.shutter" env:"SCENE_SHUTTER"`

	// Settings store
	SettingsFile  string `help:"Persistent settings file" default:"settings.toml" toml:"settings.file" env:"SETTINGS_FILE"`
	SettingsWatch bool   `help:"Reload the settings file when edited" default:"true" toml:"settings.watch" env:"SETTINGS_WATCH"`

	// Metrics settings
	MetricsPrometheusEnabled bool `help:"Enable Prometheus" default:"true" toml:"metrics.prometheus_enabled" env:"METRICS_PROMETHEUS_ENABLED"`
	MetricsSSEEnabled        bool `help:"Enable SSE" default:"true" toml:"metrics.sse_enabled" env:"METRICS_SSE_ENABLED"`

	// Telemetry settings
	TelemetryBroker   string `help:"MQTT broker URL, empty disables telemetry" default:"" toml:"telemetry.broker" env:"TELEMETRY_BROKER"`
	TelemetryTopic    string `help:"MQTT topic prefix" default:"histonode" toml:"telemetry.topic" env:"TELEMETRY_TOPIC"`
	TelemetryUsername string `help:"MQTT username" default:"" toml:"telemetry.username" env:"TELEMETRY_USERNAME"`
	TelemetryPassword string `help:"MQTT password" default:"" toml:"telemetry.password" env:"TELEMETRY_PASSWORD"`
	TelemetryQoS      int    `help:"MQTT QoS (0-2)" default:"0" toml:"telemetry.qos" env:"TELEMETRY_QOS"`

	// Features settings
	FeaturesLEDControl bool `help:"Enable LED control" default:"false" toml:"features.led_control_enabled" env:"FEATURES_LED_CONTROL"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingPipeline  string `help:"Pipeline logging level" default:"info" toml:"logging.pipeline" env:"LOGGING_PIPELINE"`
	LoggingExposure  string `help:"Exposure controller logging level" default:"info" toml:"logging.exposure" env:"LOGGING_EXPOSURE"`
	LoggingSlots     string `help:"Overlay slot logging level" default:"info" toml:"logging.slots" env:"LOGGING_SLOTS"`
	LoggingNVM       string `help:"Settings store logging level" default:"info" toml:"logging.nvm" env:"LOGGING_NVM"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingTelemetry string `help:"Telemetry logging level" default:"info" toml:"logging.telemetry" env:"LOGGING_TELEMETRY"`
	LoggingLED       string `help:"LED logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"pipeline":  opts.LoggingPipeline,
				"exposure":  opts.LoggingExposure,
				"slots":     opts.LoggingSlots,
				"nvm":       opts.LoggingNVM,
				"api":       opts.LoggingAPI,
				"http":      opts.LoggingAPI,
				"telemetry": opts.LoggingTelemetry,
				"led":       opts.LoggingLED,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")
		logger.Info("Starting histonode", "version", version.String())

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Mirror every log entry onto the bus for the log stream
		var logSeq atomic.Uint64
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        logSeq.Add(1),
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// Settings store
		store := nvm.NewTOML(opts.SettingsFile)
		if loadErr := store.Load(); loadErr != nil {
			logger.Warn("Failed to load settings, using defaults", "file", opts.SettingsFile, "error", loadErr)
		}

		// Simulated host and camera
		simConfig := device.DefaultSimConfig()
		simConfig.Encode = opts.SceneEncode
		simConfig.Exposure = exposure.Pair{ISO: int32(opts.SceneISO), Shutter: int32(opts.SceneShutter)}
		host := device.NewSim(simConfig)

		ring := frame.NewRing()
		camera := device.NewCamera(ring, host, opts.SceneLuminance)
		registry := slots.NewRegistry(overlay.BitmapSize)
		reader := slots.NewReader(registry)
		surface := device.NewSurface()
		surface.Fill(device.ScreenHistogram)

		pass := pipeline.NewPass(pipeline.Deps{
			Host:     host,
			Frames:   ring,
			Registry: registry,
			Store:    store,
			Surface:  surface,
			Bus:      eventBus,
		})
		runner := pipeline.NewRunner(pass, pipeline.RunnerOptions{
			FPS:    opts.PipelineFPS,
			Host:   host,
			Camera: camera,
			Reader: reader,
		})

		// Pick up external edits of the settings file
		var watcher *config.Watcher[map[string]int32]
		if opts.SettingsWatch {
			watcher = config.NewConfigWatcher(opts.SettingsFile, nvm.ReadFile, logging.GetLogger("nvm"))
			watcher.OnReload(func(values map[string]int32) {
				applySettings(store, pass.Controller(), eventBus, values)
			})
		}

		// Initialize LED control if enabled
		var ledManager *led.Manager
		var ledController led.Controller
		if opts.FeaturesLEDControl {
			logger.Info("LED control enabled, initializing")
			ledLogger := logging.GetLogger("led")
			ledController = led.New(ledLogger)

			// Create LED manager that follows exposure lock changes
			ledManager = led.NewManager(ledController, eventBus, ledLogger, nvm.Locked(store))
		}

		// Initialize MQTT telemetry if a broker is configured
		var mqttClient *telemetry.Client
		var publisher *telemetry.Publisher
		if opts.TelemetryBroker != "" {
			telemetryConfig := telemetry.Config{
				Broker:   opts.TelemetryBroker,
				Topic:    opts.TelemetryTopic,
				Username: opts.TelemetryUsername,
				Password: opts.TelemetryPassword,
				QoS:      byte(min(max(opts.TelemetryQoS, 0), 2)),
			}
			client, dialErr := telemetry.Dial(telemetryConfig)
			if dialErr != nil {
				logger.Warn("Telemetry disabled", "broker", opts.TelemetryBroker, "error", dialErr)
			} else {
				mqttClient = client
				publisher = telemetry.NewPublisher(telemetryConfig, eventBus, client)
			}
		}

		apiOpts := &api.Options{
			AuthUsername:  opts.AuthUsername,
			AuthPassword:  opts.AuthPassword,
			EventBus:      eventBus,
			Host:          host,
			Store:         store,
			Pass:          pass,
			Registry:      registry,
			Reader:        reader,
			LEDController: ledController,
		}

		// Add Prometheus handler if enabled
		if opts.MetricsPrometheusEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}

		server := api.NewServer(apiOpts)

		var sseExporter *exporters.SSEExporter
		if opts.MetricsSSEEnabled {
			sseExporter = exporters.NewSSEExporter(eventBus)
		}

		notifier := systemd.NewNotifier(logger)

		ctx, cancel := context.WithCancel(context.Background())
		runDone := make(chan struct{})

		hooks.OnStart(func() {
			if watcher != nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Failed to watch settings file", "file", opts.SettingsFile, "error", startErr)
				}
			}

			if ledManager != nil {
				ledManager.Start()
			}
			if publisher != nil {
				publisher.Start()
			}
			if sseExporter != nil {
				sseExporter.Start(ctx)
			}

			go func() {
				defer close(runDone)
				if runErr := runner.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
					logger.Error("Pipeline stopped", "error", runErr)
				}
			}()

			// The watchdog is fed only while passes keep completing
			stallAfter := 10*runner.Interval() + time.Second
			go notifier.Watch(ctx, func() bool {
				at := pass.Last().At
				return !at.IsZero() && time.Since(at) < stallAfter
			})
			notifier.Status("pipeline running, run " + runner.ID())
			notifier.Ready()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			notifier.Stopping()
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Stop the pipeline after the API stops reading it
			cancel()
			<-runDone

			if sseExporter != nil {
				sseExporter.Stop()
			}
			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping settings watcher", "error", stopErr)
				}
			}
			if publisher != nil {
				publisher.Stop()
			}
			if mqttClient != nil {
				mqttClient.Close()
			}
			if ledManager != nil {
				ledManager.Stop()
			}
		})
	})

	cli.Root().Version = version.Banner()
	cli.Root().AddCommand(cmd.CreateReplayCmd())
	cli.Root().AddCommand(cmd.CreateSplitCmd())

	// Run the CLI
	cli.Run()
}

// applySettings merges a reloaded settings file into the store. The lock bit
// goes through the controller so lock listeners fire.
func applySettings(store *nvm.TOMLStore, ctrl *exposure.Controller, bus *events.Bus, values map[string]int32) {
	logger := logging.GetLogger("nvm")

	if v, ok := values[nvm.ExpLock.String()]; ok {
		delete(values, nvm.ExpLock.String())
		ctrl.SetLock(v&1 != 0)
	}

	now := time.Now().Format(time.RFC3339)
	for _, idx := range store.Apply(values) {
		value := store.Get(idx)
		logger.Info("Settings field reloaded", "field", idx.String(), "value", value)
		bus.Publish(events.SettingsChangedEvent{
			Field:     idx.String(),
			Value:     value,
			Source:    "file",
			Timestamp: now,
		})
	}
}
