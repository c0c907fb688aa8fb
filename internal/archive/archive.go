package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
	"github.com/muzykantov/geo-data-pipeline/internal/fileutil"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
	"github.com/muzykantov/geo-data-pipeline/internal/sectioned"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/table"
)

const gzipExt = ".gz"

// Member is one regular entry of a tar container.
type Member struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}

// Base returns the member's base file name.
func (m Member) Base() string {
	return dataset.MemberBase(m.Name)
}

// Compressed reports whether the payload is gzip-compressed.
func (m Member) Compressed() bool {
	return strings.HasSuffix(m.Base(), gzipExt)
}

// ParseFunc splits decompressed text into tables under outDir.
type ParseFunc func(r io.Reader, outDir string) ([]string, error)

// List returns the regular members of the container in listing order.
func List(containerPath string) ([]Member, error) {
	file, err := os.Open(containerPath)
	if err != nil {
		return nil, services.Wrap(services.ErrContainerDecode, "extract", "open container", containerPath, err)
	}
	defer file.Close()

	var members []Member
	reader := tar.NewReader(file)
	for {
		hdr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return members, nil
		}
		if err != nil {
			return nil, services.Wrap(services.ErrContainerDecode, "extract", "list members", containerPath, err)
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}
		members = append(members, Member{Name: hdr.Name, Size: hdr.Size})
	}
}

// Runner unpacks a container into per-member directories and splits every
// gzip payload into tables.
type Runner struct {
	Logger *slog.Logger
	Parse  ParseFunc
}

// NewRunner returns a runner that parses payloads with sectioned.Split.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		Logger: logging.NewComponentLogger(logger, "archive"),
		Parse:  sectioned.Split,
	}
}

// Extract processes members in listing order. Each member gets
// destDir/<base>/ holding the raw payload; gzip payloads are decompressed,
// the compressed file is removed, and the text is parsed into the same
// directory. The first failing member aborts the run.
func (r *Runner) Extract(ctx context.Context, containerPath, destDir string) error {
	logger := logging.WithContext(ctx, r.Logger)
	parse := r.Parse
	if parse == nil {
		parse = sectioned.Split
	}

	file, err := os.Open(containerPath)
	if err != nil {
		return services.Wrap(services.ErrContainerDecode, "extract", "open container", containerPath, err)
	}
	defer file.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrExtraction, "extract", "create destination", destDir, err)
	}

	reader := tar.NewReader(file)
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return services.Wrap(services.ErrContainerDecode, "extract", "read member header", containerPath, err)
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			logger.Debug("skipping non-regular member", logging.String(logging.FieldMember, hdr.Name))
			continue
		}
		member := Member{Name: hdr.Name, Size: hdr.Size}
		if member.Base() == "" {
			logger.Debug("skipping unnamed member", logging.String(logging.FieldMember, hdr.Name))
			continue
		}
		tables, err := r.extractMember(services.WithMember(ctx, member.Base()), reader, member, destDir, parse)
		if err != nil {
			return err
		}
		processed++
		logger.Info("member extracted",
			logging.String(logging.FieldMember, member.Base()),
			logging.Int64("bytes", member.Size),
			logging.Int("tables", tables),
		)
	}
	logger.Info("container extracted",
		logging.String(logging.FieldEventType, "extract_complete"),
		logging.String("container", containerPath),
		logging.Int("members", processed),
	)
	return nil
}

func (r *Runner) extractMember(ctx context.Context, src io.Reader, member Member, destDir string, parse ParseFunc) (int, error) {
	base := member.Base()
	memberDir := filepath.Join(destDir, base)
	payloadPath := filepath.Join(memberDir, base)
	fail := func(op string, err error) (int, error) {
		wrapped := services.Wrap(services.ErrExtraction, "extract", op, payloadPath, err)
		logging.WarnWithContext(logging.WithContext(ctx, r.Logger), "member failed", "member_failed",
			logging.String(logging.FieldErrorHint, "re-run to retry; the archive is kept"),
			logging.Error(err),
		)
		return 0, wrapped
	}

	if err := os.MkdirAll(memberDir, 0o755); err != nil {
		return fail("create member directory", err)
	}
	err := fileutil.WriteAtomic(payloadPath, func(w io.Writer) error {
		n, err := io.Copy(w, src)
		if err != nil {
			return err
		}
		if n != member.Size {
			return fmt.Errorf("short member payload: %d of %d bytes", n, member.Size)
		}
		return nil
	})
	if err != nil {
		return fail("write payload", err)
	}
	if !member.Compressed() {
		return 0, nil
	}

	text, err := gunzipFile(payloadPath)
	if err != nil {
		return fail("decompress payload", err)
	}
	if err := os.Remove(payloadPath); err != nil {
		return fail("remove compressed payload", err)
	}
	written, err := parse(bytes.NewReader(text), memberDir)
	if err != nil {
		return fail("split sections", err)
	}
	return len(written), nil
}

func gunzipFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// Complete reports whether dir exists and every directory below it, at any
// depth, holds at least one table file. A member directory with zero tables
// makes the whole extraction incomplete.
func Complete(dir string) (bool, error) {
	exists, err := fileutil.DirExists(dir)
	if err != nil || !exists {
		return false, err
	}
	complete := true
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		ok, err := hasTable(path)
		if err != nil {
			return err
		}
		if !ok {
			complete = false
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return complete, nil
}

func hasTable(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), table.Ext) {
			return true, nil
		}
	}
	return false, nil
}
