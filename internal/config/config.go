// Package config handles pipeline configuration loading and management.
package config

// Config holds all pipeline settings.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig selects which processing steps run and how many scenes
// are processed concurrently.
type PipelineConfig struct {
	Validate    bool              `yaml:"validate"`
	TransformUV bool              `yaml:"transform_uv"`
	GenUVData   bool              `yaml:"gen_uv_data"`
	Workers     int               `yaml:"workers"`
	UVTransform UVTransformConfig `yaml:"uvtransform"`
}

// UVTransformConfig selects which transform components the UV transform
// step evaluates. A disabled component is treated as its default value.
type UVTransformConfig struct {
	EvalScaling     bool `yaml:"eval_scaling"`
	EvalRotation    bool `yaml:"eval_rotation"`
	EvalTranslation bool `yaml:"eval_translation"`
}

// OutputConfig controls where processed scene documents are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // Output directory (empty = alongside input)
	Suffix string `yaml:"suffix"` // Appended to the input file stem
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Validate:    true,
			TransformUV: true,
			GenUVData:   true,
			Workers:     4,
			UVTransform: UVTransformConfig{
				EvalScaling:     true,
				EvalRotation:    true,
				EvalTranslation: true,
			},
		},
		Output: OutputConfig{
			Dir:    "",
			Suffix: "_processed",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
