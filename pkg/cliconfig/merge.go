package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.LogDir != "" {
		target.LogDir = source.LogDir
		target.Sources["logDir"] = sourceType
	}
	if source.Name != "" {
		target.Name = source.Name
		target.Sources["name"] = sourceType
	}
	if source.Timeout != 0 {
		target.Timeout = source.Timeout
		target.Sources["timeout"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	if source.LogFile != "" {
		target.LogFile = source.LogFile
		target.Sources["logFile"] = sourceType
	}
	if source.ArtifactDir != "" {
		target.ArtifactDir = source.ArtifactDir
		target.Sources["artifactDir"] = sourceType
	}
	// For booleans, checking `if source.X` cannot detect an explicit false.
	// SetFields (populated during file loading) says whether the key was
	// present. Without it only true values are merged.
	if boolIsSet(source, "fullRequest") {
		target.FullRequest = source.FullRequest
		target.Sources["fullRequest"] = sourceType
	}
	if boolIsSet(source, "fullResponse") {
		target.FullResponse = source.FullResponse
		target.Sources["fullResponse"] = sourceType
	}
	if boolIsSet(source, "onlyNotOk") {
		target.OnlyNotOK = source.OnlyNotOK
		target.Sources["onlyNotOk"] = sourceType
	}
	if boolIsSet(source, "json") {
		target.JSON = source.JSON
		target.Sources["json"] = sourceType
	}
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config.
func boolIsSet(cfg *Config, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "fullRequest":
		return cfg.FullRequest
	case "fullResponse":
		return cfg.FullResponse
	case "onlyNotOk":
		return cfg.OnlyNotOK
	case "json":
		return cfg.JSON
	}
	return false
}
