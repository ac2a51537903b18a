package config

const (
	defaultInputDir           = "~/.local/share/pps1c/input"
	defaultOutputDir          = "~/.local/share/pps1c/output"
	defaultWorkDir            = "~/.local/share/pps1c/work"
	defaultLogDir             = "~/.local/share/pps1c/logs"
	defaultAPIBind            = "127.0.0.1:7487"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultScanSettleSeconds  = 30
	defaultMaxParallelScans   = 2
	defaultCalibMode          = "meirink"
	defaultAnnounceTopic      = "pps1c.products"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			ScanSettleSeconds:  defaultScanSettleSeconds,
			MaxParallelScans:   defaultMaxParallelScans,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		SEVIRI: SEVIRI{
			Enabled:   true,
			CalibMode: defaultCalibMode,
		},
		AVHRR: AVHRR{
			Enabled: true,
		},
		Announce: Announce{
			Topic: defaultAnnounceTopic,
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}
