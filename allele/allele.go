// Package allele canonicalizes MHC class I allele names so that the many
// spellings found in the wild ("HLA-A*02:01", "hla-a0201", "A*02:01") all
// collapse to one dataset key.
package allele

import (
	"fmt"
	"strings"
)

// Normalize returns the canonical form of an allele name: upper-cased, with
// surrounding whitespace, the "HLA-" prefix, and the "*" and ":" field
// separators removed. "HLA-A*02:01" and "a0201" both normalize to "A0201".
func Normalize(name string) (string, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("allele name %q is empty after trimming", name)
	}

	n = strings.TrimPrefix(n, "HLA-")
	n = strings.ReplaceAll(n, "*", "")
	n = strings.ReplaceAll(n, ":", "")
	n = strings.ReplaceAll(n, "-", "")

	if n == "" {
		return "", fmt.Errorf("allele name %q contains no identifying characters", name)
	}

	return n, nil
}
