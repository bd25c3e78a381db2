package config

// Defaults applied before a config file is decoded.
const (
	DefaultAPIBind           = "127.0.0.1:8001"
	DefaultOpset             = 13
	DefaultWorkers           = 4
	DefaultMaxUploadMiB      = 256
	DefaultTensorFlowCommand = "python3 -m tf2onnx.convert"
	DefaultTensorFlowTimeout = 300
)

// Default returns the baseline configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: "~/.cache/onnxgate/scratch",
			LogDir:     "~/.local/share/onnxgate/logs",
			APIBind:    DefaultAPIBind,
		},
		Converter: Converter{
			DefaultOpset:      DefaultOpset,
			Workers:           DefaultWorkers,
			MaxUploadMiB:      DefaultMaxUploadMiB,
			TensorFlowCommand: DefaultTensorFlowCommand,
			TensorFlowTimeout: DefaultTensorFlowTimeout,
		},
		Journal: Journal{
			Enabled: false,
			Path:    "~/.local/share/onnxgate/journal.db",
		},
		API: API{
			RateLimitRPS:   0,
			RateLimitBurst: 0,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
