package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/adapter/outbound/httpapi"
	"github.com/osvs/memberportal/internal/adapter/outbound/state"
	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/session"
)

var (
	loginEmail    string
	loginPassword string
	whoamiOffline bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session for later commands",
	Long: `Log in with email and password. The password is read from
OSVS_PASSWORD or, when unset, from the first line of stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("OSVS_PASSWORD")
		}
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			p, err := fetch(ctx, a, "login", func(ctx context.Context) (*auth.Principal, error) {
				return a.cache.Login(ctx, loginEmail, password)
			})
			if err != nil {
				return err
			}
			return a.render(fmt.Sprintf("Logged in as %s", p.FullName()))
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			a.cache.Logout(ctx)
			a.jar.Clear()
			a.loggedOut = true
			return a.render("Logged out")
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in member",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			var p *auth.Principal
			if whoamiOffline {
				if a.saved.For(a.cfg.Backend.URL) {
					p = a.saved.Principal
				}
			} else if a.cache.Start(ctx) == session.StateAuthenticated {
				p = a.cache.Principal()
			}
			if p == nil {
				return a.render("Not logged in")
			}
			return a.render(principalView(p, sessionExpiry(a)))
		})
	},
}

// sessionExpiry formats the access token expiry, or "" when unknown.
func sessionExpiry(a *app) string {
	exp, ok, err := state.TokenExpiry(a.jar.Saved(), state.AccessCookie)
	if err != nil {
		a.logger.Debug("unreadable access token", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return exp.Local().Format(time.RFC3339)
}

var (
	regBody    member.RegisterBody
	regPicture string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new member account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := regBody
		body.HomeNumber = optional(cmd, "home-number")
		body.Notes = optional(cmd, "notes")
		body.LodgeID = optional(cmd, "lodge")
		if body.Password == "" {
			body.Password = os.Getenv("OSVS_PASSWORD")
		}
		pic, closePic, err := openPicture(regPicture)
		if err != nil {
			return err
		}
		defer closePic()
		return withApp(cmd, func(ctx context.Context, a *app) error {
			u, err := fetch(ctx, a, "register", func(ctx context.Context) (*member.User, error) {
				return a.client.Register(ctx, body, pic)
			})
			if err != nil {
				return err
			}
			if u == nil {
				return a.render("Registered")
			}
			return a.render(userView(u))
		})
	},
}

var forgotCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset mail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			err := do(ctx, a, "forgot password", func(ctx context.Context) error {
				return a.client.ForgotPassword(ctx, member.ForgotPasswordBody{Email: args[0]})
			})
			if err != nil {
				return err
			}
			return a.render("If the address is registered, a reset link is on its way")
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Set a new password with a reset token",
	Long:  `Set a new password with a reset token. The new password is read from OSVS_PASSWORD.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			err := do(ctx, a, "reset password", func(ctx context.Context) error {
				return a.client.ResetPassword(ctx, member.ResetPasswordBody{Token: args[0], Password: os.Getenv("OSVS_PASSWORD")})
			})
			if err != nil {
				return err
			}
			return a.render("Password updated")
		})
	},
}

// openPicture opens path as an upload. An empty path means no picture.
func openPicture(path string) (*httpapi.Picture, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open picture: %w", err)
	}
	return &httpapi.Picture{Name: f.Name(), Content: f}, func() { _ = f.Close() }, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prefer OSVS_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")

	whoamiCmd.Flags().BoolVar(&whoamiOffline, "offline", false, "show the stored principal without asking the backend")

	f := registerCmd.Flags()
	f.StringVar(&regBody.Username, "username", "", "username")
	f.StringVar(&regBody.Email, "email", "", "email")
	f.StringVar(&regBody.Password, "password", "", "password (prefer OSVS_PASSWORD)")
	f.StringVar(&regBody.Firstname, "firstname", "", "first name")
	f.StringVar(&regBody.Lastname, "lastname", "", "last name")
	f.StringVar(&regBody.DateOfBirth, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&regBody.Official, "official", "", "official title")
	f.StringVar(&regBody.Mobile, "mobile", "", "mobile number")
	f.StringVar(&regBody.City, "city", "", "city")
	f.StringVar(&regBody.Address, "address", "", "street address")
	f.StringVar(&regBody.Zipcode, "zipcode", "", "zip code")
	f.String("home-number", "", "home phone number")
	f.String("notes", "", "notes")
	f.String("lodge", "", "lodge id")
	f.StringVar(&regPicture, "picture", "", "profile picture file")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd, forgotCmd, resetCmd)
}
