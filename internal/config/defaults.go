package config

const (
	defaultConfigPath           = "~/.config/vogsdemo/config.toml"
	defaultStateDir             = "~/.local/share/vogsdemo"
	defaultLogDir               = "~/.local/share/vogsdemo/logs"
	defaultManifestPath         = "assets/manifests/scene-manifest.json"
	defaultAPIBind              = "127.0.0.1:7490"
	defaultAssetUserAgent       = "vogsdemo/dev"
	defaultSceneDataBaseURL     = "https://d3msd1uq322nhw.cloudfront.net"
	defaultSceneDataSceneID     = "002"
	defaultSceneDataCameraCount = 5
	defaultSceneDataBatchSize   = 20
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
			ManifestPath: defaultManifestPath,
			APIBind:      defaultAPIBind,
		},
		Assets: Assets{
			UserAgent: defaultAssetUserAgent,
		},
		SceneData: SceneData{
			BaseURL:     defaultSceneDataBaseURL,
			SceneID:     defaultSceneDataSceneID,
			CameraCount: defaultSceneDataCameraCount,
			BatchSize:   defaultSceneDataBatchSize,
		},
		Diagnostics: Diagnostics{
			Enabled: true,
			Persist: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
