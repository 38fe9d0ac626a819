package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"news"},
	Short:   "Read and publish news",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List news items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			posts, err := fetch(ctx, a, "posts", func(ctx context.Context) ([]member.Post, error) {
				return a.client.ListPosts(ctx, listQuery)
			})
			if err != nil {
				return err
			}
			return a.render(postsView(posts))
		})
	},
}

var postsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one news item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			p, err := fetch(ctx, a, "post "+args[0], func(ctx context.Context) (*member.Post, error) {
				return a.client.GetPost(ctx, id)
			})
			if err != nil {
				return err
			}
			return a.render(postView(p))
		})
	},
}

var (
	postBody    member.PostBody
	postPicture string
)

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a news item (staff only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := postBody
		pic, closePic, err := openPicture(postPicture)
		if err != nil {
			return err
		}
		defer closePic()
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			p, err := fetch(ctx, a, "create post", func(ctx context.Context) (*member.Post, error) {
				return a.client.CreatePost(ctx, body, pic)
			})
			if err != nil {
				return err
			}
			return a.render(postView(p))
		})
	},
}

var postsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a news item (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		body := member.UpdatePostBody{
			Title:       optional(cmd, "title"),
			Description: optional(cmd, "description"),
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			p, err := fetch(ctx, a, "post "+args[0], func(ctx context.Context) (*member.Post, error) {
				return a.client.UpdatePost(ctx, id, body)
			})
			if err != nil {
				return err
			}
			return a.render(postView(p))
		})
	},
}

func init() {
	addListFlags(postsListCmd)

	postsCreateCmd.Flags().StringVar(&postBody.Title, "title", "", "title")
	postsCreateCmd.Flags().StringVar(&postBody.Description, "description", "", "body text")
	postsCreateCmd.Flags().StringVar(&postPicture, "picture", "", "picture file")

	postsUpdateCmd.Flags().String("title", "", "title")
	postsUpdateCmd.Flags().String("description", "", "body text")

	postsCmd.AddCommand(postsListCmd, postsGetCmd, postsCreateCmd, postsUpdateCmd)
	rootCmd.AddCommand(postsCmd)
}
