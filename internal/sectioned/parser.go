package sectioned

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muzykantov/geo-data-pipeline/internal/table"
)

// HeadingSection is the one section whose first line is data, not column
// names.
const HeadingSection = "Heading"

const maxLineBytes = 16 << 20

type state int

const (
	noSection state = iota
	inSection
)

// EmitFunc receives each finalized section in input order.
type EmitFunc func(table.Table) error

// Parser is a single-pass state machine over the lines of a sectioned text
// payload. Lines before the first header are dropped. A header finalizes the
// open section and opens the next one. Close finalizes whatever is open.
type Parser struct {
	state state
	key   string
	lines []string
	emit  EmitFunc
}

// NewParser returns a parser in the NoSection state.
func NewParser(emit EmitFunc) *Parser {
	return &Parser{emit: emit}
}

// Feed consumes one line without its terminator.
func (p *Parser) Feed(line string) error {
	line = strings.TrimSuffix(line, "\r")
	if strings.HasPrefix(line, "[") {
		if err := p.finalize(); err != nil {
			return err
		}
		key := headerKey(line)
		if key == "" {
			return nil
		}
		p.state = inSection
		p.key = key
		return nil
	}
	if p.state != inSection {
		return nil
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	p.lines = append(p.lines, line)
	return nil
}

// Close finalizes the open section, if any. The parser returns to NoSection
// and may be reused.
func (p *Parser) Close() error {
	return p.finalize()
}

func (p *Parser) finalize() error {
	if p.state != inSection {
		return nil
	}
	tbl := buildTable(p.key, p.lines)
	p.state = noSection
	p.key = ""
	p.lines = nil
	if p.emit == nil {
		return nil
	}
	return p.emit(tbl)
}

// Scan runs the parser over r and calls emit for every section.
func Scan(r io.Reader, emit EmitFunc) error {
	parser := NewParser(emit)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := parser.Feed(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read sectioned text: %w", err)
	}
	return parser.Close()
}

// Split parses r and writes one <section>.tsv per section into outDir. A
// section key seen twice overwrites the earlier file. It returns the written
// paths in input order.
func Split(r io.Reader, outDir string) ([]string, error) {
	var written []string
	err := Scan(r, func(tbl table.Table) error {
		path, err := tbl.WriteFile(outDir)
		if err != nil {
			return fmt.Errorf("write section %s: %w", tbl.Name, err)
		}
		written = append(written, path)
		return nil
	})
	return written, err
}

// HasHeaderRow reports whether a section's first line names its columns.
func HasHeaderRow(key string) bool {
	return key != HeadingSection
}

func headerKey(line string) string {
	key := strings.TrimSpace(line)
	key = strings.Trim(key, "[]")
	key = strings.TrimSpace(key)
	return strings.NewReplacer("/", "_", "\\", "_").Replace(key)
}

func buildTable(key string, lines []string) table.Table {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Split(line, table.Delimiter))
	}
	tbl := table.Table{Name: key, HasHeaderRow: HasHeaderRow(key), Rows: rows}
	if tbl.HasHeaderRow && len(rows) > 1 {
		width := len(rows[0])
		for i := 1; i < len(rows); i++ {
			if len(rows[i]) < width {
				padded := make([]string, width)
				copy(padded, rows[i])
				rows[i] = padded
			}
		}
	}
	return tbl
}
