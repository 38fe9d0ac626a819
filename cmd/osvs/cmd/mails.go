package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
)

var mailsCmd = &cobra.Command{
	Use:   "mails",
	Short: "Read your inbox and send lodge mails",
}

var mailsInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List mails delivered to you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			entries, err := fetch(ctx, a, "inbox", a.client.Inbox)
			if err != nil {
				return err
			}
			return a.render(inboxView(entries))
		})
	},
}

var mailBody member.MailBody

var mailsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Draft a mail to a lodge (staff only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := mailBody
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			m, err := fetch(ctx, a, "create mail", func(ctx context.Context) (*member.Mail, error) {
				return a.client.CreateMail(ctx, body)
			})
			if err != nil {
				return err
			}
			if m == nil {
				return a.render("Drafted mail")
			}
			return a.render(fmt.Sprintf("Drafted mail %d; send it with `osvs mails send %d`", m.ID, m.ID))
		})
	},
}

var mailsSendCmd = &cobra.Command{
	Use:   "send <id>",
	Short: "Deliver a drafted mail (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			if err := do(ctx, a, "mail "+args[0], func(ctx context.Context) error {
				return a.client.SendMail(ctx, id)
			}); err != nil {
				return err
			}
			return a.render(fmt.Sprintf("Sent mail %d", id))
		})
	},
}

func init() {
	mailsCreateCmd.Flags().Int64Var(&mailBody.LID, "lodge", 0, "recipient lodge id")
	mailsCreateCmd.Flags().StringVar(&mailBody.Title, "title", "", "subject")
	mailsCreateCmd.Flags().StringVar(&mailBody.Content, "content", "", "message body")

	mailsCmd.AddCommand(mailsInboxCmd, mailsCreateCmd, mailsSendCmd)
	rootCmd.AddCommand(mailsCmd)
}
