// Package testutil loads the command-line scenarios of the conformance suite.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the scenario root, relative to the module root.
const ScenariosDir = "testdata/scenarios"

// ScenarioFile is the name of the scenario description in each scenario directory.
const ScenarioFile = "scenario.yaml"

// Scenario is one invocation of the tammr command and its expected outcome.
// Cmd holds the arguments after the program name; file arguments are
// relative to the scenario directory.
type Scenario struct {
	Cmd    []string `yaml:"cmd"`
	Stdin  string   `yaml:"stdin"`
	Tags   []string `yaml:"tags"`
	Expect Expect   `yaml:"expect"`
}

// Expect describes the expected exit code and output. Empty fields are not checked.
type Expect struct {
	ExitCode       int    `yaml:"exit_code"`
	Stdout         string `yaml:"stdout"`
	StdoutContains string `yaml:"stdout_contains"`
	Stderr         string `yaml:"stderr"`
	StderrContains string `yaml:"stderr_contains"`
	// StderrJSONSubset must each match, as a subset, one diagnostic of the
	// JSON array printed on stderr (use with --pretty=false).
	StderrJSONSubset []map[string]any `yaml:"stderr_json_subset"`
	// Files maps file names to their expected content after the run.
	Files map[string]string `yaml:"files"`
}

// LoadScenario loads the scenario.yaml in dir. Unknown keys are an error so
// that a misspelled expectation does not silently pass.
func LoadScenario(dir string) (*Scenario, error) {
	f, err := os.Open(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) == 0 && s.Stdin == "" {
		return nil, fmt.Errorf("%s: scenario needs cmd or stdin", dir)
	}
	return &s, nil
}

// ListScenarios returns the directories under root that hold a scenario.yaml,
// sorted by name.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), ScenarioFile)); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// CopyDir copies the regular files of src into dst, so a scenario can run
// without touching its checked-in files.
func CopyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
