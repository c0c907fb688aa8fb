package projection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/muzykantov/geo-data-pipeline/internal/fileutil"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/table"
)

const (
	// DefaultSourceTable names the table trimmed by the Project stage.
	DefaultSourceTable = "Probes"
	// DefaultSuffix is appended to the source table name for the output.
	DefaultSuffix = "Trimmed"
)

// DefaultDropColumns are the annotation columns removed from Probes tables.
var DefaultDropColumns = []string{
	"Definition",
	"Ontology_Component",
	"Ontology_Process",
	"Ontology_Function",
	"Synonyms",
	"Obsolete_Probe_Id",
	"Probe_Sequence",
}

// TrimmedPath returns the sibling output path for tablePath:
// dir/<base><suffix>.tsv.
func TrimmedPath(tablePath, suffix string) string {
	dir := filepath.Dir(tablePath)
	base := strings.TrimSuffix(filepath.Base(tablePath), table.Ext)
	return filepath.Join(dir, base+suffix+table.Ext)
}

// Project removes the named columns from a header table and writes the
// remaining columns, in their original order, to the Trimmed sibling.
// Columns that are not present are ignored.
func Project(tablePath string, drop []string) (string, error) {
	return ProjectAs(tablePath, DefaultSuffix, drop)
}

// ProjectAs is Project with an explicit output suffix.
func ProjectAs(tablePath, suffix string, drop []string) (string, error) {
	src, err := table.ReadFile(tablePath, true)
	if err != nil {
		return "", services.Wrap(services.ErrProjection, "project", "read table", tablePath, err)
	}
	header := src.Header()
	if header == nil {
		return "", services.Wrap(services.ErrProjection, "project", "read table", tablePath+" has no header row", nil)
	}

	keep := make([]int, 0, len(header))
	for i, name := range header {
		if !slices.Contains(drop, name) {
			keep = append(keep, i)
		}
	}

	rows := make([][]string, 0, len(src.Rows))
	for _, row := range src.Rows {
		out := make([]string, len(keep))
		for j, idx := range keep {
			if idx < len(row) {
				out[j] = row[idx]
			}
		}
		rows = append(rows, out)
	}

	dest := TrimmedPath(tablePath, suffix)
	trimmed := table.Table{
		Name:         strings.TrimSuffix(filepath.Base(dest), table.Ext),
		HasHeaderRow: true,
		Rows:         rows,
	}
	if _, err := trimmed.WriteFile(filepath.Dir(dest)); err != nil {
		return "", services.Wrap(services.ErrProjection, "project", "write table", dest, err)
	}
	return dest, nil
}

// Projector applies Project to every source table under an extraction root.
type Projector struct {
	SourceTable string
	Suffix      string
	Drop        []string
	MaxParallel int
	Logger      *slog.Logger
}

// New builds a projector with defaults for empty settings.
func New(sourceTable, suffix string, drop []string, maxParallel int, logger *slog.Logger) *Projector {
	if strings.TrimSpace(sourceTable) == "" {
		sourceTable = DefaultSourceTable
	}
	if strings.TrimSpace(suffix) == "" {
		suffix = DefaultSuffix
	}
	if drop == nil {
		drop = slices.Clone(DefaultDropColumns)
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Projector{
		SourceTable: sourceTable,
		Suffix:      suffix,
		Drop:        drop,
		MaxParallel: maxParallel,
		Logger:      logging.NewComponentLogger(logger, "projection"),
	}
}

func (p *Projector) sourceName() string {
	return p.SourceTable + table.Ext
}

// Discover walks root and returns every source table path in lexical walk
// order. A missing root yields no tables.
func (p *Projector) Discover(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() && d.Name() == p.sourceName() {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s tables: %w", p.SourceTable, err)
	}
	return found, nil
}

// ProjectTree projects every discovered source table, at most MaxParallel at
// a time. The first failure cancels the remaining work.
func (p *Projector) ProjectTree(ctx context.Context, root string) ([]string, error) {
	sources, err := p.Discover(root)
	if err != nil {
		return nil, services.Wrap(services.ErrProjection, "project", "discover", root, err)
	}

	outputs := make([]string, len(sources))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.MaxParallel)
	for i, source := range sources {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			dest, err := ProjectAs(source, p.Suffix, p.Drop)
			if err != nil {
				return err
			}
			outputs[i] = dest
			p.Logger.Debug("table projected",
				logging.String("source", source),
				logging.String("destination", dest),
			)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	p.Logger.Info("projection complete",
		logging.String(logging.FieldEventType, "projection_complete"),
		logging.Int("tables", len(outputs)),
	)
	return outputs, nil
}

// Complete reports whether the extraction root exists and every source table
// under it has a non-empty trimmed sibling.
func (p *Projector) Complete(root string) (bool, error) {
	exists, err := fileutil.DirExists(root)
	if err != nil || !exists {
		return false, err
	}
	sources, err := p.Discover(root)
	if err != nil {
		return false, err
	}
	// A tree without source tables is complete; it has nothing to trim.
	for _, source := range sources {
		ok, err := fileutil.NonEmptyFile(TrimmedPath(source, p.Suffix))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
