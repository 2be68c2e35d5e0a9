// Package flatfile provides parsing for 23andMe and AncestryDNA style
// tab-delimited genotype files.
package flatfile

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/genomeforge/genomeforge/internal/genome"
)

// Column counts for the two supported flat-file layouts.
const (
	columns23AndMe  = 4 // rsid, chromosome, position, genotype
	columnsAncestry = 5 // rsid, chromosome, position, allele1, allele2
)

// Parser reads variants from a 23andMe/AncestryDNA flat file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	skipped    int
	columns    int // detected column count, 0 until first data line
}

// NewParser creates a new flat-file parser for the given file.
// Supports both plain and gzipped files.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genotype file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read genotype file: %w", err)
	}

	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek genotype file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// Next reads the next variant from the file.
// Returns nil, nil when there are no more variants.
// No-call genotypes ("--" or "0") are emitted as variants with the
// canonical no-call genotype so downstream counts stay accurate.
func (p *Parser) Next() (*genome.Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read genotype line: %w", err)
			}
			// A final data line may arrive without a trailing newline;
			// it still carries a variant.
			if line == "" {
				return nil, nil
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := splitColumns(line)
		if len(fields) == 0 {
			continue
		}

		// Some exports carry a literal column header as the first
		// non-comment line.
		if p.columns == 0 && strings.EqualFold(fields[0], "rsid") {
			continue
		}

		// The first data line fixes the file's column layout. A file
		// that opens with an unrecognizable layout is structurally
		// broken, not a single bad record.
		if p.columns == 0 {
			switch len(fields) {
			case columns23AndMe, columnsAncestry:
				p.columns = len(fields)
			default:
				return nil, &genome.ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("expected %d or %d columns, found %d", columns23AndMe, columnsAncestry, len(fields)),
				}
			}
		}

		v, ok := p.parseFields(fields)
		if !ok {
			p.skipped++
			continue
		}
		return v, nil
	}
}

// parseFields converts one data line's fields into a variant.
// Returns ok=false when the line is malformed and should be skipped.
func (p *Parser) parseFields(fields []string) (*genome.Variant, bool) {
	if len(fields) != p.columns {
		return nil, false
	}

	rsid := fields[0]
	chrom := genome.NormalizeChrom(fields[1])
	posField := fields[2]

	var genotype string
	if p.columns == columnsAncestry {
		genotype = normalizeGenotype(fields[3] + fields[4])
	} else {
		genotype = normalizeGenotype(fields[3])
	}

	// AncestryDNA uses chromosome 0 for unplaced markers.
	var pos int64
	if chrom == "0" || chrom == "" {
		chrom = ""
	} else {
		var err error
		pos, err = strconv.ParseInt(posField, 10, 64)
		if err != nil || pos <= 0 {
			return nil, false
		}
	}

	v, err := genome.New(rsid, chrom, pos, genotype)
	if err != nil {
		return nil, false
	}
	return v, true
}

// splitColumns splits a line on tabs, falling back to whitespace for
// space-delimited exports.
func splitColumns(line string) []string {
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	return strings.Fields(line)
}

// normalizeGenotype maps platform no-call tokens to the canonical form.
func normalizeGenotype(gt string) string {
	switch gt {
	case "--", "00", "0", "":
		return genome.NoCall
	}
	return gt
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Skipped returns the number of malformed lines skipped so far.
func (p *Parser) Skipped() int {
	return p.skipped
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
