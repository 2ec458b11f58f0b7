package lint

import (
	"regexp"
	"strings"
)

var (
	emptyOnClickRE = regexp.MustCompile(`onClick\s*=\s*\{\s*\}`)
	todoCommentRE  = regexp.MustCompile(`(?i)//\s*TODO`)
	todoCallRE     = regexp.MustCompile(`TODO\(\)`)
)

// DeadHandlerScanner reports empty click handlers, TODO comments and TODO()
// calls outside test trees.
type DeadHandlerScanner struct {
	Extensions []string
}

func (s *DeadHandlerScanner) Name() string { return "deadclick" }

func (s *DeadHandlerScanner) Scan(root string) ([]Finding, error) {
	files, skipped, err := walk(root, s.Extensions, true)
	if err != nil {
		return nil, err
	}
	out := skipped
	for i := range out {
		out[i].Scanner = s.Name()
	}

	for _, f := range files {
		for _, loc := range emptyOnClickRE.FindAllStringIndex(f.text, -1) {
			out = append(out, Finding{Scanner: s.Name(), Path: f.path, Line: lineOf(f.text, loc[0]), Message: "empty onClick handler"})
		}
		for i, line := range strings.Split(f.text, "\n") {
			// A "// TODO(" comment is a tracked TODO call, not a bare note.
			for _, loc := range todoCommentRE.FindAllStringIndex(line, -1) {
				if strings.HasPrefix(line[loc[1]:], "(") {
					continue
				}
				out = append(out, Finding{Scanner: s.Name(), Path: f.path, Line: i + 1, Message: "TODO comment found"})
				break
			}
		}
		for _, loc := range todoCallRE.FindAllStringIndex(f.text, -1) {
			out = append(out, Finding{Scanner: s.Name(), Path: f.path, Line: lineOf(f.text, loc[0]), Message: "TODO() function call"})
		}
	}
	return out, nil
}
