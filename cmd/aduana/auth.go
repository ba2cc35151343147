package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equipeadalove/aduana/internal/cli"
	"github.com/equipeadalove/aduana/internal/model"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the classification service",
		Long: `Log in with your email and password. The token is stored locally and
used by every other command until you log out or it expires.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	cmd.Flags().String("email", "", "account email")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openCommandApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	email, err := flagOrAsk(cmd, p, "email", "Email")
	if err != nil {
		return err
	}
	password, err := p.AskSecret(ctx, "Password")
	if err != nil {
		return userError(err, "Could not read the password.")
	}

	if err := a.account.Login(ctx, email, password); err != nil {
		return userError(err, "An error occurred while logging in.")
	}
	printLine(cmd, cli.FormatSuccess("Logged in as "+a.session.Email()))
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.account.Logout(cmd.Context()); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess("Logged out."))
			return nil
		},
	}
}

func signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE:  runSignup,
	}
}

func runSignup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openCommandApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	var reg model.Registration
	if reg.Name, err = p.Ask(ctx, "Name", ""); err != nil {
		return err
	}
	if reg.Email, err = p.Ask(ctx, "Email", ""); err != nil {
		return err
	}
	if reg.Password, err = p.AskSecret(ctx, "Password"); err != nil {
		return userError(err, "Could not read the password.")
	}
	confirmation, err := p.AskSecret(ctx, "Confirm password")
	if err != nil {
		return userError(err, "Could not read the password.")
	}

	if err := a.account.Signup(ctx, reg, confirmation); err != nil {
		return userError(err, "Could not create the account.")
	}
	printLine(cmd, cli.FormatSuccess("Account created! Run 'aduana login' to continue."))
	return nil
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireLogin(); err != nil {
				return err
			}
			profile, err := a.account.Profile(cmd.Context())
			if err != nil {
				return userError(err, "Could not load the profile.")
			}
			printLine(cmd, cli.RenderBox("Profile", fmt.Sprintf("%s\n%s", profile.Name, cli.SubtleStyle.Render(profile.Email))))
			return nil
		},
	}
}

func passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Recover or change your password",
		Long: `Password recovery runs in three steps:

  aduana password recover --email you@company.com   # sends a 6-digit code
  aduana password verify --email you@company.com --code 123456
  aduana password reset --email you@company.com --code 123456

Use 'aduana password update' to change the password while logged in.`,
	}

	cmd.AddCommand(passwordRecoverCmd())
	cmd.AddCommand(passwordVerifyCmd())
	cmd.AddCommand(passwordResetCmd())
	cmd.AddCommand(passwordUpdateCmd())

	return cmd
}

func passwordRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Email a recovery code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			email, err := flagOrAsk(cmd, newPrompter(cmd), "email", "Email")
			if err != nil {
				return err
			}
			if err := a.account.RequestRecovery(ctx, email); err != nil {
				return userError(err, "Could not send the code.")
			}
			printLine(cmd, cli.FormatSuccess("Code sent! Check your email."))
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	return cmd
}

func passwordVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a recovery code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			email, code, err := askEmailAndCode(cmd, newPrompter(cmd))
			if err != nil {
				return err
			}
			if err := a.account.VerifyCode(ctx, email, code); err != nil {
				return userError(err, "Invalid or expired code.")
			}
			printLine(cmd, cli.FormatSuccess("Code verified! Run 'aduana password reset' to choose a new password."))
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("code", "", "6-digit code")
	return cmd
}

func passwordResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Choose a new password with a verified code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrompter(cmd)
			email, code, err := askEmailAndCode(cmd, p)
			if err != nil {
				return err
			}
			password, err := p.AskSecret(ctx, "New password")
			if err != nil {
				return userError(err, "Could not read the password.")
			}
			confirmation, err := p.AskSecret(ctx, "Confirm password")
			if err != nil {
				return userError(err, "Could not read the password.")
			}

			if err := a.account.ResetPassword(ctx, email, code, password, confirmation); err != nil {
				return userError(err, "Could not reset the password.")
			}
			printLine(cmd, cli.FormatSuccess("Password reset! Log in with the new password."))
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("code", "", "6-digit code")
	return cmd
}

func passwordUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Change the password of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireLogin(); err != nil {
				return err
			}
			p := newPrompter(cmd)
			current, err := p.AskSecret(ctx, "Current password")
			if err != nil {
				return userError(err, "Could not read the password.")
			}
			password, err := p.AskSecret(ctx, "New password")
			if err != nil {
				return userError(err, "Could not read the password.")
			}
			confirmation, err := p.AskSecret(ctx, "Confirm password")
			if err != nil {
				return userError(err, "Could not read the password.")
			}

			if err := a.account.UpdatePassword(ctx, current, password, confirmation); err != nil {
				return userError(err, "Could not update the password.")
			}
			printLine(cmd, cli.FormatSuccess("Password updated! Log in again."))
			return nil
		},
	}
}

func askEmailAndCode(cmd *cobra.Command, p *cli.Prompter) (string, string, error) {
	email, err := flagOrAsk(cmd, p, "email", "Email")
	if err != nil {
		return "", "", err
	}
	code, err := flagOrAsk(cmd, p, "code", "Code")
	if err != nil {
		return "", "", err
	}
	return email, code, nil
}

// flagOrAsk returns the value of flag, prompting for it when unset.
func flagOrAsk(cmd *cobra.Command, p *cli.Prompter, flag, label string) (string, error) {
	if value, _ := cmd.Flags().GetString(flag); value != "" {
		return value, nil
	}
	return p.Ask(cmd.Context(), label, "")
}
