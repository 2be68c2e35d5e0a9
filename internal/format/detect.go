// Package format classifies genotype input files into supported formats.
package format

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format identifies a supported genotype file format.
type Format string

// Supported format tags. Format23AndMe also covers AncestryDNA-style
// flat files; both tags cover their gzip-compressed variants.
const (
	FormatVCF     Format = "vcf"
	Format23AndMe Format = "23andme"
)

// ErrUnsupportedFormat is returned when a file matches no known format
// signature. Detection never guesses silently.
var ErrUnsupportedFormat = errors.New("unsupported genotype file format")

// sniffLimit bounds how much of a file content sniffing may read.
const sniffLimit = 4096

// Detect classifies the file at path. The extension is inspected first
// (case-insensitive, .gz stripped to the inner extension); ambiguous
// extensions fall through to content sniffing of a bounded prefix.
func Detect(path string) (Format, error) {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")

	if strings.HasSuffix(name, ".vcf") {
		return FormatVCF, nil
	}

	// Generic extensions (.txt, .csv, .tsv or none): decide from content.
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for format detection: %w", err)
	}
	defer f.Close()

	return DetectContent(f)
}

// DetectContent classifies a byte stream by its first non-comment line.
// Reads at most a bounded prefix; gzip-compressed streams are transparently
// decompressed.
func DetectContent(r io.Reader) (Format, error) {
	br := bufio.NewReader(io.LimitReader(r, sniffLimit))

	// Transparently unwrap gzip.
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", fmt.Errorf("read gzip prefix: %w", err)
		}
		defer gz.Close()
		br = bufio.NewReader(io.LimitReader(gz, sniffLimit))
	}

	for {
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		// The #CHROM column header is the VCF signature; plain #
		// lines are provenance comments in flat files and ## lines
		// are VCF meta headers, both inconclusive on their own.
		if strings.HasPrefix(line, "#CHROM") {
			return FormatVCF, nil
		}
		if strings.HasPrefix(line, "##fileformat=VCF") {
			return FormatVCF, nil
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			if isFlatFileRow(line) {
				return Format23AndMe, nil
			}
			return "", ErrUnsupportedFormat
		}

		if err != nil {
			return "", ErrUnsupportedFormat
		}
	}
}

// isFlatFileRow reports whether a line looks like a 23andMe/AncestryDNA
// data or header row: 4 or 5 tab/space-delimited columns with an
// rsid-shaped first field.
func isFlatFileRow(line string) bool {
	var fields []string
	if strings.Contains(line, "\t") {
		fields = strings.Split(line, "\t")
	} else {
		fields = strings.Fields(line)
	}
	if len(fields) != 4 && len(fields) != 5 {
		return false
	}

	first := strings.ToLower(fields[0])
	return first == "rsid" || strings.HasPrefix(first, "rs") || strings.HasPrefix(first, "i")
}
