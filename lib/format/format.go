/*package format handles hpost's miniature language for choosing which
snapshots of a run to process, e.g:

   Snaps = 0..100 - 63

Snapshots are numbered by their position in the sorted list of solution
files that discovery returns, starting at 0.

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of n tokens separated by "+" or "-".
Each token can be either a number or two numbers separated by "..". E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

These strings build up sequences of numbers by adding/removing individual
numbers and contiguous sequences. For example, 0 through 10 would be 0..10,
1, 2, 3, 15, 16, 17 could be written as 1..17 - 4..14. This is useful for
skipping corrupted snapshots or processing a subset of a run.

All spaces around "-" and "+" symbols are ignored.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Any expanded formats which would have more than BigNumber elements are
	// assumed to be bugs.
	BigNumber = 1 << 20
)

// ExpandSequenceFormat expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	// Parse and error-check the format string.
	tok, err := tokeniseSequenceFormat(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil {
		return nil, err
	}

	// Add numbers to the sequence.
	m := map[int]bool{}
	for i := range adds {
		ns, err := parseSequenceFormatToken(adds[i])
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			if m[n] {
				return nil, fmt.Errorf("The number %d is added more than once.", n)
			}
			m[n] = true
		}
		if len(m) > BigNumber {
			return nil, fmt.Errorf("This sequence would have more than %d "+
				"elements, which is almost certainly a bug.", BigNumber)
		}
	}

	// Remove numbers from the sequence.
	for i := range subs {
		ns, err := parseSequenceFormatToken(subs[i])
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			if !m[n] {
				return nil, fmt.Errorf("The number %d is removed more times "+
					"than it was inserted.", n)
			}
			delete(m, n)
		}
	}

	// Convert to a sorted array of integers.
	out := []int{}
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)

	return out, nil
}

// Select returns the elements of paths picked by a sequence format. An empty
// format picks the last path, which for sorted solution files is the newest
// snapshot.
func Select(paths []string, format string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("There are no snapshots to select from.")
	}
	if strings.TrimSpace(format) == "" {
		return []string{paths[len(paths)-1]}, nil
	}

	idx, err := ExpandSequenceFormat(format)
	if err != nil {
		return nil, fmt.Errorf("The snapshot format string, '%s', is not "+
			"valid. %s", format, err.Error())
	}

	out := make([]string, len(idx))
	for i, n := range idx {
		if n >= len(paths) {
			return nil, fmt.Errorf("The snapshot format string, '%s', "+
				"selects snapshot %d, but only %d snapshots (0..%d) exist.",
				format, n, len(paths), len(paths)-1)
		}
		out[i] = paths[n]
	}
	return out, nil
}

// tokeniseSequenceFormat tokenizes a sequence format string. This means that
// it separates all the operators from the tokens they act on.
func tokeniseSequenceFormat(format string) ([]string, error) {
	// Make sure all operators are separated by spaces.
	formatClean := strings.ReplaceAll(format, "+", " + ")
	formatClean = strings.ReplaceAll(formatClean, "-", " - ")

	// Tokenize and remove empty tokens.
	tok := strings.Fields(formatClean)

	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("Format string is empty")
	}

	// Handle the case where the starting "+" is dropped.
	adds, subs = []string{}, []string{}
	var start int
	if tok[0] == "+" || tok[0] == "-" {
		start = 0
	} else {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				1, tok[0], err.Error(),
			)
		}

		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		}

		if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'", tok[i],
			)
		}

		if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err.Error(),
			)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error if tok is a valid token for
// a sequence format and an error describing the problem otherwise. The error
// message assumes it is printed after a trailing "because".
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the token is empty.")
	}

	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// parseSequenceFormatToken parses a single token in a sequence format string
// and returns the corresponding array of numbers. Callers are expected to
// have run isSequenceFormatToken already, where the token's position is still
// known, so an error here means the two functions disagree.
func parseSequenceFormatToken(tok string) ([]int, error) {
	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		n, err := strconv.Atoi(tok)
		if err == nil {
			return []int{n}, nil
		}
	case 2:
		start, err1 := strconv.Atoi(bounds[0])
		end, err2 := strconv.Atoi(bounds[1])
		if err1 == nil && err2 == nil && end >= start {
			if end-start >= BigNumber {
				return nil, fmt.Errorf("The range '%s' has more than %d "+
					"elements, which is almost certainly a bug.", tok, BigNumber)
			}
			out := make([]int, 0, end-start+1)
			for n := start; n <= end; n++ {
				out = append(out, n)
			}
			return out, nil
		}
	}

	return nil, fmt.Errorf("Internal error: invalid sequence format token, "+
		"'%s', passed isSequenceFormatToken().", tok)
}
