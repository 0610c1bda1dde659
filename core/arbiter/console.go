package arbiter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Console is an Arbiter that renders questions on a terminal and reads one
// line per decision. It blocks without timeout; the operator is part of the
// pipeline.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console arbiter reading from stdin and writing to stdout.
func NewConsole() *Console {
	return &Console{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewConsoleWith creates a console arbiter over explicit streams.
func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Ask renders the question and reads the decision. An empty line accepts the
// proposal if one exists, otherwise yields Unresolved. A number picks a
// candidate. Anything else is a free-typed value, re-prompted until it passes
// sanitation.
func (c *Console) Ask(q Question) (Answer, error) {
	c.render(q)

	for {
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return Answer{Kind: Unresolved}, nil
			}
			return Answer{}, fmt.Errorf("reading arbitration input: %w", err)
		}
		line = strings.TrimSpace(line)

		if line == "" {
			if q.Proposal != "" {
				return Answer{Kind: AcceptedProposal, Value: q.Proposal}, nil
			}
			return Answer{Kind: Unresolved}, nil
		}

		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(q.Candidates) {
			return Answer{Kind: PickedCandidate, Value: q.Candidates[n-1].Value}, nil
		}

		if err := Validate(line); err != nil {
			fmt.Fprintf(c.out, "  %s, try again: ", err)
			continue
		}
		return Answer{Kind: FreeText, Value: line}, nil
	}
}

func (c *Console) render(q Question) {
	line := strings.Repeat("=", 78)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, line)
	fmt.Fprintf(c.out, "DECISION NEEDED: %s\n", q.Field)
	fmt.Fprintln(c.out, line)
	fmt.Fprintf(c.out, "Product: %s\n", q.ProductName)
	if q.ProductURL != "" {
		fmt.Fprintf(c.out, "URL:     %s\n", q.ProductURL)
	}
	if len(q.Candidates) > 0 {
		fmt.Fprintln(c.out, "Candidates:")
		for i, cand := range q.Candidates {
			fmt.Fprintf(c.out, "  [%d] %s", i+1, cand.Value)
			if cand.RawKey != "" || cand.SourceURL != "" {
				fmt.Fprintf(c.out, "  (from %q, %s)", cand.RawKey, cand.SourceURL)
			}
			fmt.Fprintln(c.out)
		}
	}
	if q.Proposal != "" {
		fmt.Fprintf(c.out, "Proposal: %s\n", q.Proposal)
	}
	fmt.Fprintln(c.out, strings.Repeat("-", 78))
	fmt.Fprint(c.out, "Enter accepts the proposal, a number picks a candidate, or type a value: ")
}
