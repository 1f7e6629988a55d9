package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/inbound/terminal"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newModalCmd() *cobra.Command {
	var (
		phone      string
		purpose    string
		channel    string
		codeLength int
		cooldown   int
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "modal",
		Short: "Open the verification dialog for a phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := entity.ParseChannel(channel, "")
			if err != nil {
				return err
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			coord := verification.NewCoordinator(rt.dep, verification.NewClient(rt.dep.Config, rt.dep.Instrument))

			var verified bool
			open := usecase.OpenSessionInput{
				PhoneNumber: phone,
				Purpose:     entity.Purpose(purpose).Ensure(),
				Config: entity.SessionConfig{
					CodeLength:            codeLength,
					ResendCooldownSeconds: cooldown,
					MaxRetries:            maxRetries,
					Channel:               ch,
				},
				OnSuccess: func() {
					verified = true
					slog.InfoContext(ctx, "terminal verification succeeded", "masked_phone", entity.MaskPhone(phone))
				},
				OnCancel: func() {
					slog.InfoContext(ctx, "terminal verification cancelled", "masked_phone", entity.MaskPhone(phone))
				},
			}

			if _, err := tea.NewProgram(terminal.NewModalModel(ctx, coord, open), tea.WithContext(ctx)).Run(); err != nil {
				return err
			}

			if !verified {
				return fmt.Errorf("phone number %s was not verified", entity.MaskPhone(phone))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s verified\n", entity.MaskPhone(phone))
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "phone number to verify")
	cmd.Flags().StringVar(&purpose, "purpose", string(entity.PurposeStandalone), "feature asking for verification")
	cmd.Flags().StringVar(&channel, "channel", "", "sms or whatsapp, empty for the configured default")
	cmd.Flags().IntVar(&codeLength, "code-length", 0, "digits in the code, 0 for the configured default")
	cmd.Flags().IntVar(&cooldown, "resend-cooldown", 0, "seconds between resends, 0 for the configured default")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum sends, 0 for the configured default")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}
