package derivatives

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/meigma/simbids/skeleton"
)

// Values written to every derivative description.
const (
	DescriptionFile  = "dataset_description.json"
	BIDSVersion      = "1.9.0dev"
	DatasetType      = "derivative"
	HowToAcknowledge = "Include the generated boilerplate in the methods section."
	GeneratorName    = "SimBIDS"
	DefaultName      = "SimBIDS Simulated Outputs"
	DefaultVersion   = "0.1.0"

	// SingularityEnv names the environment variable that supplies the
	// container URI when none is set through options.
	SingularityEnv = "SIMBIDS_SINGULARITY_URL"

	// TemplateFlowURL is the default templateflow dataset link.
	TemplateFlowURL = "https://github.com/templateflow/templateflow"
)

// CodeURL returns the source archive URL of a release.
func CodeURL(version string) string {
	return "https://github.com/nipreps/simbids/archive/" + version + ".tar.gz"
}

type descriptionConfig struct {
	name      string
	version   string
	codeURL   string
	container string
	links     *skeleton.Mapping
	extra     *skeleton.Mapping
	logger    *slog.Logger
}

// DescriptionOption configures [WriteDescription].
type DescriptionOption func(*descriptionConfig)

// WithName sets the Name field. Defaults to DefaultName.
func WithName(name string) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.name = name
	}
}

// WithVersion sets the generator version and the matching CodeURL.
func WithVersion(v string) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.version = v
	}
}

// WithCodeURL overrides the generator CodeURL.
func WithCodeURL(u string) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.codeURL = u
	}
}

// WithContainer records a singularity container URI for the generator.
// Without it the URI is read from SingularityEnv.
func WithContainer(uri string) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.container = uri
	}
}

// WithDatasetLinks replaces the dataset links that are set on the
// description. The default links templateflow to TemplateFlowURL.
func WithDatasetLinks(links *skeleton.Mapping) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.links = links
	}
}

// WithFields merges fields into the description last, with [Merge].
func WithFields(fields *skeleton.Mapping) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.extra = fields
	}
}

// WithLogger sets the logger. If not set, logging is disabled.
func WithLogger(logger *slog.Logger) DescriptionOption {
	return func(cfg *descriptionConfig) {
		cfg.logger = logger
	}
}

// WriteDescription writes the dataset_description.json of a derivative
// dataset in outputDir, derived from the one in inputDir.
//
// The input description keeps its fields except Name, BIDSVersion,
// DatasetType and HowToAcknowledge, which are overwritten. A SimBIDS entry
// is put first in GeneratedBy, and DatasetLinks gains the configured links,
// overwriting conflicting ones with a notice. outputDir is created if
// needed. The written description is returned.
func WriteDescription(fsys billy.Filesystem, inputDir, outputDir string, opts ...DescriptionOption) (*skeleton.Mapping, error) {
	cfg := descriptionConfig{
		name:    DefaultName,
		version: DefaultVersion,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.codeURL == "" {
		cfg.codeURL = CodeURL(cfg.version)
	}
	if cfg.container == "" {
		cfg.container = os.Getenv(SingularityEnv)
	}
	if cfg.links == nil {
		cfg.links = skeleton.FromPairs("templateflow", TemplateFlowURL)
	}

	src := fsys.Join(inputDir, DescriptionFile)
	data, err := util.ReadFile(fsys, src)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDescriptionNotFound, src)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	desc, err := skeleton.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	desc.Set("Name", cfg.name)
	desc.Set("BIDSVersion", BIDSVersion)
	desc.Set("DatasetType", DatasetType)
	desc.Set("HowToAcknowledge", HowToAcknowledge)

	generator := skeleton.FromPairs("Name", GeneratorName, "Version", cfg.version, "CodeURL", cfg.codeURL)
	if cfg.container != "" {
		generator.Set("Container", skeleton.FromPairs("Type", "singularity", "URI", cfg.container))
	}
	generatedBy := []any{generator}
	if prev, ok := desc.Get("GeneratedBy"); ok {
		list, isList := prev.([]any)
		if !isList {
			return nil, fmt.Errorf("%s: %w: GeneratedBy is not a list", src, skeleton.ErrMalformedConfig)
		}
		generatedBy = append(generatedBy, list...)
	}
	desc.Set("GeneratedBy", generatedBy)

	links := skeleton.NewMapping()
	if prev, ok := desc.Get("DatasetLinks"); ok {
		m, isMap := prev.(*skeleton.Mapping)
		if !isMap {
			return nil, fmt.Errorf("%s: %w: DatasetLinks is not an object", src, skeleton.ErrMalformedConfig)
		}
		links = m
	}
	for pair := cfg.links.Oldest(); pair != nil; pair = pair.Next() {
		value := skeleton.Stringify(pair.Value)
		if old, ok := links.Get(pair.Key); ok && skeleton.Stringify(old) != value {
			cfg.logger.Warn("dataset link already set, overwriting", "link", pair.Key, "old", old, "new", value)
		}
		links.Set(pair.Key, value)
	}
	desc.Set("DatasetLinks", links)
	if cfg.extra != nil {
		desc = Merge(desc, cfg.extra, cfg.logger)
	}

	out, err := json.MarshalIndent(desc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode description: %w", err)
	}
	if err := fsys.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create %s: %w", outputDir, err)
	}
	dst := fsys.Join(outputDir, DescriptionFile)
	if err := util.WriteFile(fsys, dst, out, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", dst, err)
	}
	cfg.logger.Info("wrote derivative description", "path", dst)
	return desc, nil
}
