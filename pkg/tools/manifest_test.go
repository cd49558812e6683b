package tools

import (
	"os"
	"path/filepath"
	"testing"
)

const manifestYAML = `
tools:
  - name: weather
    description: Current weather lookup.
    input_schema:
      city: string
      units: string?
    output_schema:
      temperature: float
      conditions: string
    connector: rest
    version: 1.0.0
    timeout_seconds: 10
    retryable: true
    max_retries: 2
  - name: echo
    input_schema:
      text: string
    output_schema:
      text: string
    connector: echo
    version: 1.0.0
`

func TestParseYAMLManifest(t *testing.T) {
	m, err := ParseYAML([]byte(manifestYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if len(m.Tools) != 2 {
		t.Fatalf("tools = %d, want 2", len(m.Tools))
	}

	weather := m.Tools[0]
	if weather.Name != "weather" || weather.ConnectorName != "rest" {
		t.Errorf("unexpected contract: %+v", weather)
	}
	if weather.InputSchema["units"] != "string?" {
		t.Errorf("optional marker lost: %v", weather.InputSchema)
	}
	if !weather.Retryable || weather.MaxRetries != 2 {
		t.Errorf("retry policy lost: %+v", weather)
	}
}

func TestParseJSONManifest(t *testing.T) {
	data := []byte(`{"tools": [{"name": "ping", "input_schema": {}, "output_schema": {"ok": "bool"}, "connector": "fake"}]}`)
	m, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.Tools[0].Name != "ping" {
		t.Errorf("unexpected contract: %+v", m.Tools[0])
	}
}

func TestManifestValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"empty", `tools: []`},
		{"unnamed", `tools: [{connector: fake}]`},
		{"no connector", `tools: [{name: x}]`},
		{"duplicate", `tools: [{name: x, connector: a}, {name: x, connector: b}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(tc.data)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadManifestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	if err := os.WriteFile(path, []byte(manifestYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	r := NewRegistry()
	outcomes, err := m.Apply(r)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if outcomes["weather"] != OutcomeCreated {
		t.Errorf("outcome = %v, want created", outcomes["weather"])
	}

	// Re-applying the same manifest is a no-op.
	outcomes, err = m.Apply(r)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if outcomes["weather"] != OutcomeUnchanged {
		t.Errorf("outcome = %v, want unchanged", outcomes["weather"])
	}
}
