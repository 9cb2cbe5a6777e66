package runner

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadNames loads the input list: one performer name per line, blank lines
// ignored, order preserved, duplicates kept.
func ReadNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input list: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input list: %w", err)
	}
	return names, nil
}
