package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login [code]",
	Short: "Sign in with an access code",
	Long: `Signs in with an access code. Saving projects requires a signed-in user.

The code is remembered in the configured store (a file under ~/.onepage by
default, or Redis) until you run ` + "`onepage logout`" + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc, err := signInContext(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		var code string
		if len(args) == 1 {
			code = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Access code",
				Mask:  '*',
				Validate: func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("access code is required")
					}
					return nil
				},
			}
			if code, err = prompt.Run(); err != nil {
				return fmt.Errorf("access code: %w", err)
			}
		}

		u, err := sc.SignIn(cmd.Context(), code)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as user %d (%s)\n", u.ID, u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access code",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc, err := signInContext(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if err := sc.SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc, err := signInContext(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		u, ok := sc.Current()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in. Run `onepage login`.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %d (%s)\n", u.ID, u.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
