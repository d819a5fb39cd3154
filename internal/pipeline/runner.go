package pipeline

import (
	"context"
	"errors"

	"github.com/stefal/pyruse-go/internal/domain"
)

// Run drives record through the compiled workflow (SPEC_FULL.md §4.6):
// start at node 0; a filter's true/false result selects then/else; an
// action's success follows then; an action's error stops traversal and is
// returned to the caller, which per §4.7/§7 logs it and continues with the
// next record rather than treating it as fatal.
func (w *Workflow) Run(ctx context.Context, record *domain.Record) error {
	if w.Metrics != nil {
		w.Metrics.Inc(MetricRecordsIngested)
	}
	i := 0
	for i != terminal {
		n := &w.nodes[i]
		if n.module.IsFilter() {
			if n.module.Filter.Run(ctx, record) {
				i = n.thenDest
			} else {
				i = n.elseDest
			}
			continue
		}
		if err := n.module.Action.Run(ctx, record); err != nil {
			if w.Metrics != nil {
				w.Metrics.Inc(ActionErrorMetric(n.name))
			}
			return wrapNodeError(n.name, err)
		}
		i = n.thenDest
	}
	if w.Metrics != nil {
		w.Metrics.Inc(MetricRecordsTerminalOK)
	}
	return nil
}

func wrapNodeError(nodeName string, err error) error {
	var pe *domain.PyruseError
	kind := domain.ErrExternalIO
	if errors.As(err, &pe) {
		kind = pe.Kind
	}
	return domain.WrapError(kind, "action failed at "+nodeName, err)
}
