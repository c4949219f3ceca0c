package registry

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"urbannest/internal/config"
	"urbannest/internal/model"
	"urbannest/internal/regressor"
)

// Entry is one loaded model: its kind, the fitted pipeline and the ordered
// feature columns the pipeline expects.
type Entry struct {
	Kind      model.Kind
	Regressor *regressor.Regressor
	columns   []string
}

// Columns returns a copy of the expected feature columns
func (e *Entry) Columns() []string {
	return append([]string(nil), e.columns...)
}

// Info describes the entry for API listings
func (e *Entry) Info() model.ModelInfo {
	return model.ModelInfo{
		Name:               e.Kind.Name(),
		Slug:               e.Kind.Slug(),
		SupportsImportance: e.Kind.SupportsImportance(),
		Metrics:            e.Kind.Metrics(),
		Columns:            len(e.columns),
	}
}

// Registry holds every supported model. It is built once at startup and
// only read afterwards.
type Registry struct {
	entries map[model.Kind]*Entry
}

// Paths returns the model and column file locations for kind, applying
// per-kind overrides from cfg.
func Paths(cfg config.ModelsConfig, kind model.Kind) (modelPath, columnsPath string) {
	slug := kind.Slug()
	modelPath = filepath.Join(cfg.Dir, slug+"_model.json")
	columnsPath = filepath.Join(cfg.Dir, slug+"_model_columns.json")
	if p, ok := cfg.ModelPaths[slug]; ok && p != "" {
		modelPath = p
	}
	if p, ok := cfg.ColumnPaths[slug]; ok && p != "" {
		columnsPath = p
	}
	return modelPath, columnsPath
}

// Load reads the artifacts of every kind. Any missing or inconsistent
// artifact fails the whole load.
func Load(ctx context.Context, cfg config.ModelsConfig, logger *slog.Logger) (*Registry, error) {
	r := &Registry{entries: make(map[model.Kind]*Entry, len(model.AllKinds()))}

	for _, kind := range model.AllKinds() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		modelPath, columnsPath := Paths(cfg, kind)
		entry, err := loadEntry(kind, modelPath, columnsPath)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", kind.Name())
		}
		r.entries[kind] = entry

		logger.Info("model loaded",
			"model", kind.Name(),
			"estimator", entry.Regressor.Type(),
			"columns", len(entry.columns),
			"path", modelPath,
		)
	}
	return r, nil
}

func loadEntry(kind model.Kind, modelPath, columnsPath string) (*Entry, error) {
	reg, err := regressor.Load(modelPath)
	if err != nil {
		return nil, err
	}
	if reg.Kind() != kind.Slug() {
		return nil, errors.Newf("artifact %s holds a %q model", modelPath, reg.Kind())
	}

	columns, err := loadColumns(columnsPath)
	if err != nil {
		return nil, err
	}
	if len(columns) != reg.NumFeatures() {
		return nil, errors.Newf("%s lists %d columns but the model expects %d", columnsPath, len(columns), reg.NumFeatures())
	}

	return &Entry{Kind: kind, Regressor: reg, columns: columns}, nil
}

func loadColumns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read column list %s", path)
	}

	var columns []string
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, errors.Wrapf(err, "decode column list %s", path)
	}

	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c == "" {
			return nil, errors.Newf("%s contains an empty column name", path)
		}
		if _, dup := seen[c]; dup {
			return nil, errors.Newf("%s lists column %q twice", path, c)
		}
		seen[c] = struct{}{}
	}
	return columns, nil
}

// New builds a registry from ready entries, keyed by their kind.
// It is used by tests and tools that assemble regressors in memory.
func New(entries ...*Entry) *Registry {
	r := &Registry{entries: make(map[model.Kind]*Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Kind] = e
	}
	return r
}

// NewEntry pairs a regressor with its column list
func NewEntry(kind model.Kind, reg *regressor.Regressor, columns []string) *Entry {
	return &Entry{Kind: kind, Regressor: reg, columns: append([]string(nil), columns...)}
}

// Get returns the entry of kind
func (r *Registry) Get(kind model.Kind) (*Entry, bool) {
	e, ok := r.entries[kind]
	return e, ok
}

// Dimensions returns the column count shared by every entry, or 0 when the
// entries disagree or the registry is empty.
func (r *Registry) Dimensions() int {
	dims := 0
	for _, e := range r.entries {
		n := len(e.columns)
		if dims != 0 && n != dims {
			return 0
		}
		dims = n
	}
	return dims
}

// Entries returns the loaded entries in display order
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.entries))
	for _, kind := range model.AllKinds() {
		if e, ok := r.entries[kind]; ok {
			out = append(out, e)
		}
	}
	return out
}
