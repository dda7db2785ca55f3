package tutorial

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// WelcomeText is sent with every tutorial message.
const WelcomeText = "Welcome to Slack! We're so glad you're here.\nGet started by completing the steps below."

// DefaultPath is where the template is looked up when none is configured.
const DefaultPath = "welcome.json"

// Format selects the template file syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// file is the on-disk structure of the tutorial definition.
type file struct {
	Attachments []domain.Step `mapstructure:"attachments"`
}

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the tutorial definition at path.
func Load(path string) (*domain.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tutorial template: %w", err)
	}

	tmpl, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tmpl, nil
}

// Parse decodes and validates a tutorial definition.
func Parse(data []byte, format Format) (*domain.Template, error) {
	var raw map[string]any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse yaml: %v", domain.ErrInvalidTemplate, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse json: %v", domain.ErrInvalidTemplate, err)
		}
	}

	var f file
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}

	tmpl := &domain.Template{Steps: f.Attachments}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return tmpl, nil
}
