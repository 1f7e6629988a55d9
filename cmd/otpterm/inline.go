package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/inbound/terminal"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/surface"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newInlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inline",
		Short: "Run the self-contained inline verification flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			client := verification.NewClient(rt.dep.Config, rt.dep.Instrument)
			coord := verification.NewCoordinator(rt.dep, client)

			var verified string
			inline := surface.NewInline(surface.InlineDependency{
				Client: client,
				Modal:  coord,
				Clock:  rt.dep.Clock,
				Policy: coord.Policy(),
				OnVerificationSuccess: func(phone string) {
					verified = phone
					slog.InfoContext(ctx, "inline verification succeeded", "masked_phone", entity.MaskPhone(phone))
				},
			})

			if _, err := tea.NewProgram(terminal.NewInlineModel(ctx, inline), tea.WithContext(ctx)).Run(); err != nil {
				return err
			}

			if verified == "" {
				return fmt.Errorf("no phone number was verified")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s verified\n", entity.MaskPhone(verified))
			return nil
		},
	}
}
