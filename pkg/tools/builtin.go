package tools

import "github.com/jllopis/topomind/pkg/core"

// Builtin tool contracts. The connectors backing them are registered
// separately; tools and connectors stay declaratively decoupled so the same
// contract can be rebound to another backend.

// EchoContract returns the deterministic echo tool, mainly useful for
// smoke-testing the execution pipeline end to end.
func EchoContract() core.Contract {
	return core.Contract{
		Name:           "echo",
		Description:    "Echo the given text back unchanged.",
		InputSchema:    core.Schema{"text": "string"},
		OutputSchema:   core.Schema{"text": "string"},
		ConnectorName:  "echo",
		Version:        "1.0.0",
		TimeoutSeconds: 2,
		Tags:           []string{"builtin"},
	}
}

// CalculateContract returns the safe arithmetic tool.
func CalculateContract() core.Contract {
	return core.Contract{
		Name: "calculate",
		Description: "Perform arithmetic calculations safely. " +
			"Use operators + - * / ^ %. " +
			"Functions sqrt, sin, cos, tan, log, exp are available. " +
			"Do NOT wrap the expression in quotes.",
		InputSchema:    core.Schema{"expression": "string"},
		OutputSchema:   core.Schema{"result": "string"},
		ConnectorName:  "math",
		Version:        "1.1.0",
		TimeoutSeconds: 5,
		Tags:           []string{"builtin", "math"},
	}
}

// StatisticsContract returns the statistical operations tool.
func StatisticsContract() core.Contract {
	return core.Contract{
		Name:        "statistics",
		Description: "Statistical operations: mean, std, correlation.",
		InputSchema: core.Schema{
			"operation": "string",
			"values":    "list[number]?",
			"x":         "list[number]?",
			"y":         "list[number]?",
			"lag":       "int?",
		},
		OutputSchema:   core.Schema{"result": "any"},
		ConnectorName:  "statistics",
		Version:        "2.0.0",
		TimeoutSeconds: 5,
		Tags:           []string{"builtin", "analytics", "statistics"},
	}
}

// TimeSeriesContract returns the time-series transformation tool.
func TimeSeriesContract() core.Contract {
	return core.Contract{
		Name: "timeseries",
		Description: "Time-series transformations. " +
			"moving_average requires 'values' and 'window'; " +
			"cumulative_sum requires 'values'.",
		InputSchema: core.Schema{
			"operation": "string",
			"values":    "list[number]",
			"window":    "int?",
		},
		OutputSchema:   core.Schema{"result": "list[number]"},
		ConnectorName:  "timeseries",
		Version:        "1.1.0",
		TimeoutSeconds: 5,
		Tags:           []string{"builtin", "analytics", "timeseries"},
	}
}

// ReasonContract returns the knowledge-answering tool backed by a language
// model. Its successful answers feed the semantic encoding path.
func ReasonContract() core.Contract {
	return core.Contract{
		Name:           "reason",
		Description:    "Answer conceptual or knowledge questions.",
		InputSchema:    core.Schema{"question": "string"},
		OutputSchema:   core.Schema{"answer": "string"},
		ConnectorName:  "llm",
		Version:        "1.0.0",
		TimeoutSeconds: 30,
		Retryable:      true,
		MaxRetries:     2,
		Tags:           []string{"builtin", "reasoning"},
	}
}

// BuiltinContracts returns every builtin tool contract.
func BuiltinContracts() []core.Contract {
	return []core.Contract{
		EchoContract(),
		CalculateContract(),
		StatisticsContract(),
		TimeSeriesContract(),
		ReasonContract(),
	}
}
