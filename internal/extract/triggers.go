package extract

import (
	"context"
	"fmt"

	"github.com/sadopc/ddlschema/internal/schema"
)

func (r *resolver) triggers(ctx context.Context, table string) ([]schema.Trigger, error) {
	names, err := r.in.Triggers(ctx, r.schema, table)
	if err != nil {
		return nil, fmt.Errorf("triggers: %w", err)
	}

	triggers := make([]schema.Trigger, 0, len(names))
	for _, name := range names {
		triggers = append(triggers, schema.Trigger{Name: name})
	}
	return triggers, nil
}
