package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/ddlschema/internal/source"
	"github.com/sadopc/ddlschema/internal/ui/browser"
	"github.com/sadopc/ddlschema/internal/watch"
)

func newBrowseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [files...]",
		Short: "Explore the extracted schema interactively",
		Long: `browse extracts the schema like the root command and opens a terminal
browser over it. With --watch the browser reloads when an input changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := c.extract(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}

			title := c.fromDB
			if title == "" {
				title = strings.Join(args, ", ")
			}
			if title == "" {
				title = "stdin"
			}

			var opts []tea.ProgramOption
			if c.fromDB == "" && (len(args) == 0 || slices.Contains(args, source.Stdin)) {
				// Stdin carried the DDL; read keys from the terminal instead.
				opts = append(opts, tea.WithInputTTY())
			}
			p, done := browser.Run(browser.New(schemas, title), opts...)

			if c.watch {
				paths, err := c.inputs(args)
				if err != nil {
					p.Kill()
					<-done
					return err
				}
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go func() {
					first := true
					_ = watch.Run(ctx, paths, watch.Options{Debounce: c.cfg.Watch.Debounce, Logger: c.logger}, func(ctx context.Context) error {
						if first {
							first = false
							return nil
						}
						schemas, err := c.extract(ctx, cmd, args)
						p.Send(browser.SchemasMsg{Schemas: schemas, Err: err})
						return err
					})
				}()
			}

			if err := <-done; err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				c.logger.Debug("browser exited", zap.Error(err))
				return fmt.Errorf("browser: %w", err)
			}
			return nil
		},
	}
}
