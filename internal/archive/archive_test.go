package archive_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muzykantov/geo-data-pipeline/internal/archive"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/testsupport"
)

func writeContainer(t *testing.T, data []byte) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "GSE68849_GSE68nnn_RAW.tar")
	testsupport.WriteArchive(t, path, data)
	return path, filepath.Join(dir, "GSE68849", "GSE68nnn")
}

func TestExtractSplitsEveryMember(t *testing.T) {
	container, dest := writeContainer(t, testsupport.SampleArchive(t))

	runner := archive.NewRunner(nil)
	require.NoError(t, runner.Extract(context.Background(), container, dest))

	for _, member := range []string{"GSM1_sample.txt.gz", "GSM2_sample.txt.gz"} {
		memberDir := filepath.Join(dest, member)
		assert.NoFileExists(t, filepath.Join(memberDir, member), "compressed payload removed")
		assert.Equal(t, "Platform\tGPL10558\nTitle\tlung epithelium\n",
			testsupport.ReadFile(t, filepath.Join(memberDir, "Heading.tsv")))
		assert.Equal(t, "ID\tSymbol\tDefinition\tProbe_Sequence\nILMN_1\tSYM1\tfirst probe\tACGT\nILMN_2\tSYM2\tsecond probe\tTTGA\n",
			testsupport.ReadFile(t, filepath.Join(memberDir, "Probes.tsv")))
		assert.FileExists(t, filepath.Join(memberDir, "Data.tsv"))
	}

	complete, err := archive.Complete(dest)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestExtractIsRepeatable(t *testing.T) {
	container, dest := writeContainer(t, testsupport.SampleArchive(t))
	runner := archive.NewRunner(nil)

	require.NoError(t, runner.Extract(context.Background(), container, dest))
	first := testsupport.Snapshot(t, dest)
	require.NoError(t, runner.Extract(context.Background(), container, dest))
	assert.Equal(t, first, testsupport.Snapshot(t, dest))
}

func TestExtractRejectsMalformedContainer(t *testing.T) {
	container, dest := writeContainer(t, bytes.Repeat([]byte("x"), 1024))

	err := archive.NewRunner(nil).Extract(context.Background(), container, dest)
	require.ErrorIs(t, err, services.ErrContainerDecode)
	assert.Equal(t, "container_decode_failed", services.Kind(err))
}

func TestExtractMissingContainer(t *testing.T) {
	dir := t.TempDir()
	err := archive.NewRunner(nil).Extract(context.Background(), filepath.Join(dir, "absent.tar"), filepath.Join(dir, "out"))
	require.ErrorIs(t, err, services.ErrContainerDecode)
}

func TestExtractFailsOnCorruptGzip(t *testing.T) {
	data := testsupport.BuildTar(t,
		testsupport.Entry{Name: "GSM1_sample.txt.gz", Body: testsupport.GzipText(t, testsupport.SampleDocument)},
		testsupport.Entry{Name: "GSM2_sample.txt.gz", Body: []byte("definitely not gzip")},
		testsupport.Entry{Name: "GSM3_sample.txt.gz", Body: testsupport.GzipText(t, testsupport.SampleDocument)},
	)
	container, dest := writeContainer(t, data)

	err := archive.NewRunner(nil).Extract(context.Background(), container, dest)
	require.ErrorIs(t, err, services.ErrExtraction)
	assert.Contains(t, err.Error(), "GSM2_sample.txt.gz")

	assert.FileExists(t, filepath.Join(dest, "GSM1_sample.txt.gz", "Probes.tsv"))
	assert.NoDirExists(t, filepath.Join(dest, "GSM3_sample.txt.gz"), "later members are not processed")

	complete, err := archive.Complete(dest)
	require.NoError(t, err)
	assert.False(t, complete, "member without tables keeps extraction incomplete")
}

func TestExtractKeepsUncompressedPayload(t *testing.T) {
	data := testsupport.BuildTar(t,
		testsupport.Entry{Name: "filelist.txt", Body: []byte("GSM1\n")},
	)
	container, dest := writeContainer(t, data)

	require.NoError(t, archive.NewRunner(nil).Extract(context.Background(), container, dest))
	assert.Equal(t, "GSM1\n", testsupport.ReadFile(t, filepath.Join(dest, "filelist.txt", "filelist.txt")))

	complete, err := archive.Complete(dest)
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestExtractSkipsDirectoryEntries(t *testing.T) {
	data := testsupport.BuildTar(t,
		testsupport.Entry{Name: "nested/", Dir: true},
		testsupport.Entry{Name: "nested/GSM1_sample.txt.gz", Body: testsupport.GzipText(t, testsupport.SampleDocument)},
	)
	container, dest := writeContainer(t, data)

	require.NoError(t, archive.NewRunner(nil).Extract(context.Background(), container, dest))
	assert.FileExists(t, filepath.Join(dest, "GSM1_sample.txt.gz", "Probes.tsv"))
}

func TestExtractHonorsCancellation(t *testing.T) {
	container, dest := writeContainer(t, testsupport.SampleArchive(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := archive.NewRunner(nil).Extract(ctx, container, dest)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractUsesCustomParser(t *testing.T) {
	container, dest := writeContainer(t, testsupport.SampleArchive(t))
	var seen []string
	runner := archive.NewRunner(nil)
	runner.Parse = func(_ io.Reader, outDir string) ([]string, error) {
		seen = append(seen, filepath.Base(outDir))
		path := filepath.Join(outDir, "Only.tsv")
		return []string{path}, os.WriteFile(path, []byte("x\n"), 0o644)
	}

	require.NoError(t, runner.Extract(context.Background(), container, dest))
	assert.Equal(t, []string{"GSM1_sample.txt.gz", "GSM2_sample.txt.gz"}, seen)
}

func TestListReturnsRegularMembers(t *testing.T) {
	data := testsupport.BuildTar(t,
		testsupport.Entry{Name: "dir/", Dir: true},
		testsupport.Entry{Name: "GSM1.txt.gz", Body: []byte("abc")},
		testsupport.Entry{Name: "notes.txt", Body: []byte("hello")},
	)
	container, _ := writeContainer(t, data)

	members, err := archive.List(container)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, archive.Member{Name: "GSM1.txt.gz", Size: 3}, members[0])
	assert.True(t, members[0].Compressed())
	assert.False(t, members[1].Compressed())
}

func TestCompleteRequiresDirectory(t *testing.T) {
	complete, err := archive.Complete(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestCompleteChecksNestedDirectories(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "GSM1", "Probes.tsv"), "ID\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "GSM1", "extra"), 0o755))

	complete, err := archive.Complete(root)
	require.NoError(t, err)
	assert.False(t, complete)

	testsupport.WriteFile(t, filepath.Join(root, "GSM1", "extra", "Heading.tsv"), "a\tb\n")
	complete, err = archive.Complete(root)
	require.NoError(t, err)
	assert.True(t, complete)
}
