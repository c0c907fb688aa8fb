package testsupport

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

// SampleDocument is a small sectioned document: a Heading block followed by
// Probes and Data tables.
const SampleDocument = "[Heading]\n" +
	"Platform\tGPL10558\n" +
	"Title\tlung epithelium\n" +
	"[Probes]\n" +
	"ID\tSymbol\tDefinition\tProbe_Sequence\n" +
	"ILMN_1\tSYM1\tfirst probe\tACGT\n" +
	"ILMN_2\tSYM2\tsecond probe\tTTGA\n" +
	"[Data]\n" +
	"ID_REF\tVALUE\n" +
	"ILMN_1\t12.5\n" +
	"ILMN_2\t3.25\n"

// Entry is one member of a tar fixture.
type Entry struct {
	Name string
	Body []byte
	Dir  bool
}

// GzipText compresses text with gzip.
func GzipText(t testing.TB, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(text)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// BuildTar returns an uncompressed tar holding entries in order.
func BuildTar(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, entry := range entries {
		hdr := &tar.Header{Name: entry.Name, Mode: 0o644, Size: int64(len(entry.Body)), Typeflag: tar.TypeReg}
		if entry.Dir {
			hdr = &tar.Header{Name: entry.Name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", entry.Name, err)
		}
		if !entry.Dir {
			if _, err := tw.Write(entry.Body); err != nil {
				t.Fatalf("tar body %s: %v", entry.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

// SampleArchive returns a tar with two gzip sample members.
func SampleArchive(t testing.TB) []byte {
	t.Helper()

	return BuildTar(t,
		Entry{Name: "GSM1_sample.txt.gz", Body: GzipText(t, SampleDocument)},
		Entry{Name: "GSM2_sample.txt.gz", Body: GzipText(t, SampleDocument)},
	)
}

// WriteArchive writes data to path, creating parent directories.
func WriteArchive(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
