package connectors

import (
	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/llm"
	"github.com/jllopis/topomind/pkg/tools"
)

// RegisterBuiltinAnalytics wires the deterministic builtin connectors and
// their tool contracts into the given manager and registry. Pass a non-nil
// history to track contract versions for later migration.
func RegisterBuiltinAnalytics(manager *Manager, registry *tools.Registry, history *tools.SchemaHistory) error {
	connectorSet := map[string]core.ExecutionConnector{
		"echo":       NewEchoConnector(),
		"math":       NewMathConnector(),
		"statistics": NewStatisticsConnector(),
		"timeseries": NewTimeSeriesConnector(),
	}
	if err := manager.RegisterMany(connectorSet); err != nil {
		return err
	}

	contracts := []core.Contract{
		tools.EchoContract(),
		tools.CalculateContract(),
		tools.StatisticsContract(),
		tools.TimeSeriesContract(),
	}
	if err := registry.RegisterMany(contracts); err != nil {
		return err
	}

	if history != nil {
		for _, contract := range contracts {
			history.Record(contract)
		}
	}
	return nil
}

// RegisterReasoning wires the language model connector and the reason tool.
// Kept separate from the analytics set so offline deployments can skip it.
func RegisterReasoning(manager *Manager, registry *tools.Registry, history *tools.SchemaHistory, provider llm.Provider, model string) error {
	if err := manager.Register("llm", NewLLMConnector(provider, model)); err != nil {
		return err
	}
	contract := tools.ReasonContract()
	if err := registry.Register(contract); err != nil {
		return err
	}
	if history != nil {
		history.Record(contract)
	}
	return nil
}
