package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nitpy-cse/assetreg/internal/client"
	"github.com/nitpy-cse/assetreg/internal/model"
	"github.com/nitpy-cse/assetreg/internal/table"
)

func showUsers(ctx context.Context, out io.Writer, c *client.Client, f *ViewFlags) error {
	users, err := c.FetchUsers(ctx)
	if err != nil {
		return err
	}
	v := table.NewUserView()
	v.SetRows(users)
	return show(out, v, f)
}

func NewUsersCommand(g *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (HOD only)",
	}
	cmd.AddCommand(
		newUsersListCommand(g),
		newUsersAddCommand(g),
		newUsersResetPasswordCommand(g),
		newUsersDeleteCommand(g),
	)
	return cmd
}

func newUsersListCommand(g *GlobalFlags) *cobra.Command {
	f := &ViewFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the user table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.Client()
			if err != nil {
				return err
			}
			return showUsers(cmd.Context(), cmd.OutOrStdout(), c, f)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func newUsersAddCommand(g *GlobalFlags) *cobra.Command {
	var u client.NewUser
	view := &ViewFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if u.Name == "" || u.Email == "" || u.Password == "" {
				return errors.New("--name, --email and --password are required")
			}
			if !model.ValidRole(u.Role) {
				return fmt.Errorf("--role must be %s or %s", model.RoleHOD, model.RoleEmployee)
			}
			if err := model.ValidatePassword(u.Password); err != nil {
				return err
			}

			c, err := g.Client()
			if err != nil {
				return err
			}
			created, err := c.AddUser(cmd.Context(), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", created.ID, created.Email)
			return showUsers(cmd.Context(), cmd.OutOrStdout(), c, view)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&u.Name, "name", "", "Full name")
	fs.StringVar(&u.Email, "email", "", "Email address")
	fs.StringVar(&u.Password, "password", "", "Initial password")
	fs.StringVar(&u.Role, "role", model.RoleEmployee, "Role (hod,employee)")
	view.BindFlags(fs)
	return cmd
}

func newUsersResetPasswordCommand(g *GlobalFlags) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password ID --password NEW",
		Short: "Set a new password for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := model.ValidatePassword(password); err != nil {
				return err
			}

			c, err := g.Client()
			if err != nil {
				return err
			}
			if err := c.ResetUserPassword(cmd.Context(), id, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password reset for user %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}

func newUsersDeleteCommand(g *GlobalFlags) *cobra.Command {
	view := &ViewFlags{}

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := g.Client()
			if err != nil {
				return err
			}
			if err := c.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return showUsers(cmd.Context(), cmd.OutOrStdout(), c, view)
		},
	}
	view.BindFlags(cmd.Flags())
	return cmd
}
