package sources

import (
	"bufio"
	"io"
	"strings"
)

// Parser extracts domain names from a threat feed format.
type Parser interface {
	Parse(r io.Reader) ([]string, error)
}

// HostfileParser parses hosts-file format: "127.0.0.1 domain" or "0.0.0.0 domain".
type HostfileParser struct{}

func (p *HostfileParser) Parse(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	domains := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// A hosts line may alias several names to one address
		for _, name := range fields[1:] {
			d := strings.ToLower(name)
			if isLocalName(d) {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			domains = append(domains, d)
		}
	}
	return domains, scanner.Err()
}

// DomainListParser parses one-domain-per-line format.
type DomainListParser struct{}

func (p *DomainListParser) Parse(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	domains := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		d := strings.ToLower(line)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	return domains, scanner.Err()
}

// ParserForFormat returns the appropriate parser for a feed format string.
func ParserForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "hosts", "hostfile":
		return &HostfileParser{}
	default:
		return &DomainListParser{}
	}
}

func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func isLocalName(d string) bool {
	switch d {
	case "localhost", "localhost.localdomain", "broadcasthost", "local":
		return true
	}
	return false
}
