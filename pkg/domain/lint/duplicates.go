package lint

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var (
	typeDeclRE = regexp.MustCompile(`(?m)^\s*(?:data\s+class|class|object|interface)\s+([A-Za-z0-9_]+)\b`)
	funDeclRE  = regexp.MustCompile(`(?m)^\s*(?:@Composable\s+)?fun\s+([A-Za-z0-9_]+)\s*\(`)
	routeRE    = regexp.MustCompile(`Screen\("([^"]+)"\)`)
)

// DefaultCoreTypes must each be declared exactly once.
var DefaultCoreTypes = []string{
	"GameNightViewModel", "InteractionRenderer", "HelldeckDb", "GameEngine", "RouteAudit",
}

// DefaultCoreScreens must each be declared exactly once.
var DefaultCoreScreens = []string{
	"HouseRulesScreen", "GroupDnaScreen", "PacksScreen", "RolesScreen",
	"HighlightsScreen", "DebugHarnessScreen", "HomeScreen", "LobbyScreen",
	"RoundScreen", "FeedbackScreen", "StatsScreen", "SettingsScreen", "CardLabScreen",
}

// DuplicateSymbolScanner reports core types and screens declared in more than
// one file, and route strings repeated in the navigation file.
type DuplicateSymbolScanner struct {
	CoreTypes   []string
	CoreScreens []string
	Extensions  []string
}

// NewDuplicateSymbolScanner uses the default core names.
func NewDuplicateSymbolScanner() *DuplicateSymbolScanner {
	return &DuplicateSymbolScanner{CoreTypes: DefaultCoreTypes, CoreScreens: DefaultCoreScreens}
}

func (s *DuplicateSymbolScanner) Name() string { return "duplicates" }

func (s *DuplicateSymbolScanner) Scan(root string) ([]Finding, error) {
	files, skipped, err := walk(root, s.Extensions, false)
	if err != nil {
		return nil, err
	}
	for i := range skipped {
		skipped[i].Scanner = s.Name()
	}

	types := make(map[string][]string)
	screens := make(map[string][]string)
	var navFile *sourceFile
	for i, f := range files {
		for _, m := range typeDeclRE.FindAllStringSubmatch(f.text, -1) {
			if slices.Contains(s.CoreTypes, m[1]) {
				types[m[1]] = append(types[m[1]], f.path)
			}
		}
		for _, m := range funDeclRE.FindAllStringSubmatch(f.text, -1) {
			if slices.Contains(s.CoreScreens, m[1]) {
				screens[m[1]] = append(screens[m[1]], f.path)
			}
		}
		slashed := filepath.ToSlash(f.path)
		if navFile == nil && strings.HasSuffix(slashed, "Screen.kt") && strings.Contains(slashed, "ui/nav") {
			navFile = &files[i]
		}
	}

	out := skipped
	out = append(out, s.report("type", s.CoreTypes, types)...)
	out = append(out, s.report("function", s.CoreScreens, screens)...)

	if navFile != nil {
		counts := make(map[string]int)
		var order []string
		for _, m := range routeRE.FindAllStringSubmatch(navFile.text, -1) {
			if counts[m[1]] == 0 {
				order = append(order, m[1])
			}
			counts[m[1]]++
		}
		for _, route := range order {
			if counts[route] > 1 {
				out = append(out, Finding{
					Scanner: s.Name(),
					Path:    navFile.path,
					Message: fmt.Sprintf("duplicate route string %q (%d times)", route, counts[route]),
				})
			}
		}
	}
	return out, nil
}

func (s *DuplicateSymbolScanner) report(what string, names []string, found map[string][]string) []Finding {
	var out []Finding
	for _, name := range names {
		paths := found[name]
		if len(paths) < 2 {
			continue
		}
		out = append(out, Finding{
			Scanner: s.Name(),
			Message: fmt.Sprintf("duplicate core %s '%s':\n  %s", what, name, strings.Join(paths, "\n  ")),
		})
	}
	return out
}
