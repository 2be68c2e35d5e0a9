// Package vcf provides streaming VCF parsing into normalized variants.
package vcf

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

// Mandatory fixed columns of the #CHROM header line.
var mandatoryColumns = []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// Parser reads variants from a VCF file.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	lineNumber  int
	skipped     int
	sampleNames []string // sample names from #CHROM header line
	pending     []*genome.Variant
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
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

	// Parse header
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and validates VCF header lines. A missing or truncated
// #CHROM line is a structural failure.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("read header: %w", err)
			}
			// A final header line may arrive without a trailing newline.
			if line == "" {
				break
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) < len(mandatoryColumns) {
				return &genome.ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("#CHROM header has %d columns, expected at least %d", len(fields), len(mandatoryColumns)),
				}
			}
			// Sample columns follow FORMAT (index 9+)
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			return nil
		}

		// Non-header line encountered without #CHROM
		return &genome.ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &genome.ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
// Malformed data lines are skipped and counted, not returned as errors.
func (p *Parser) Next() (*genome.Variant, error) {
	for {
		if len(p.pending) > 0 {
			v := p.pending[0]
			p.pending = p.pending[1:]
			return v, nil
		}

		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read variant line: %w", err)
			}
			// A final data line may arrive without a trailing newline;
			// it still carries a variant.
			if line == "" {
				return nil, nil
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		variants, ok := p.parseLine(line)
		if !ok {
			p.skipped++
			continue
		}
		p.pending = variants
	}
}

// parseLine parses a single VCF data line into one variant per sample.
// Returns ok=false when the line is malformed and should be skipped.
func (p *Parser) parseLine(line string) ([]*genome.Variant, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, false
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos <= 0 {
		return nil, false
	}

	rsid := fields[2]
	if rsid == "." {
		rsid = ""
	}

	chrom := genome.NormalizeChrom(fields[0])

	ref := fields[3]
	alts := strings.Split(fields[4], ",")

	// Sites-only file: no FORMAT/sample columns, fall back to the raw
	// ref+alt allele pair.
	if len(fields) < 10 {
		v, err := genome.New(rsid, chrom, pos, ref+alts[0])
		if err != nil {
			return nil, false
		}
		return []*genome.Variant{v}, true
	}

	gtIdx := gtFieldIndex(fields[8])
	if gtIdx < 0 {
		return nil, false
	}

	variants := make([]*genome.Variant, 0, len(fields)-9)
	for _, sample := range fields[9:] {
		sampleFields := strings.Split(sample, ":")
		if gtIdx >= len(sampleFields) {
			return nil, false
		}

		gt, ok := DecodeGenotype(sampleFields[gtIdx], ref, alts)
		if !ok {
			return nil, false
		}

		v, err := genome.New(rsid, chrom, pos, gt)
		if err != nil {
			return nil, false
		}
		variants = append(variants, v)
	}

	return variants, true
}

// gtFieldIndex returns the position of GT within a FORMAT column, or -1.
func gtFieldIndex(format string) int {
	for i, key := range strings.Split(format, ":") {
		if key == "GT" {
			return i
		}
	}
	return -1
}

// DecodeGenotype decodes a VCF GT value (e.g. "0/1", "1|1", ".") into a
// called allele string against the REF and ALT alleles. Missing allele
// indices yield the no-call genotype. Returns ok=false for indices outside
// the REF/ALT range.
func DecodeGenotype(gt, ref string, alts []string) (string, bool) {
	indices := strings.FieldsFunc(gt, func(r rune) bool {
		return r == '/' || r == '|'
	})
	if len(indices) == 0 {
		return "", false
	}

	var sb strings.Builder
	for _, idx := range indices {
		if idx == "." {
			return genome.NoCall, true
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 || n > len(alts) {
			return "", false
		}
		if n == 0 {
			sb.WriteString(ref)
		} else {
			sb.WriteString(alts[n-1])
		}
	}

	return sb.String(), true
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Skipped returns the number of malformed data lines skipped so far.
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
