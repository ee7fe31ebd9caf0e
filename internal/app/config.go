package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocPath       string   // document to process
	PipelinesPath string   // optional directory or file of user .hcl declarations
	DocType       string   // explicit document-type override, empty = sniff
	Outputs       []string // output names to resolve; empty = list available outputs

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocPath == "" {
		return nil, errors.New("DocPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
