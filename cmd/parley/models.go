package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

func runModels(ctx context.Context, out io.Writer) error {
	a, err := newApp(ctx, "stderr", "models")
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.completion.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tOWNER\tCONTEXT\t")
	for _, m := range list {
		marker := ""
		if m.ID == a.completion.DefaultModel() {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%d\t\n", m.ID, marker, m.OwnedBy, m.ContextWindow)
	}
	return w.Flush()
}
