package rule

import "embed"

// builtinFS embeds the built-in catalogue and its fixtures.
// The catalogue is a subset of the uap-core regexes.yaml.
//
//go:embed regexes/regexes.yaml regexes/tests/*.yaml
var builtinFS embed.FS

const (
	builtinCatalogue = "regexes/regexes.yaml"
	builtinFixtures  = "regexes/tests"
)
