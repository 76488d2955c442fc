package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var authUser, authPassword string
var authRemember bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the token",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := Client.Login(authUser, authPassword, authRemember)
		if err != nil {
			log.Fatalf("Error logging in: %v", err)
		}
		if err := saveToken(token); err != nil {
			log.Printf("Warning: could not save token: %v", err)
		}
		fmt.Printf("Logged in as %s.\n", authUser)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and save the token",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := Client.Register(authUser, authPassword, authRemember)
		if err != nil {
			log.Fatalf("Error registering: %v", err)
		}
		if err := saveToken(token); err != nil {
			log.Printf("Warning: could not save token: %v", err)
		}
		fmt.Printf("Registered %s.\n", authUser)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the saved token",
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.Logout(); err != nil {
			log.Printf("Warning: %v", err)
		}
		forgetToken()
		fmt.Println("Logged out.")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Run: func(cmd *cobra.Command, args []string) {
		user, err := Client.Me()
		if err != nil {
			log.Fatalf("Error fetching profile: %v", err)
		}
		fmt.Printf("Username:      %s\n", user.Username)
		fmt.Printf("Access level:  %s\n", user.AccessLevel)
		fmt.Printf("Registered at: %s\n", user.RegisteredAt)
		fmt.Printf("Last login:    %s\n", user.LastLogin)
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd [new-password]",
	Short: "Change your password",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.UpdatePassword(args[0]); err != nil {
			log.Fatalf("Error updating password: %v", err)
		}
		fmt.Println("Password updated.")
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and manage users",
	Run: func(cmd *cobra.Command, args []string) {
		users, err := Client.ListUsers()
		if err != nil {
			log.Fatalf("Error listing users: %v", err)
		}
		fmt.Println("Users:")
		for _, u := range users {
			fmt.Printf("- %s [%s] last login %s\n", u.Username, u.AccessLevel, u.LastLogin)
		}
	},
}

var usersAccessCmd = &cobra.Command{
	Use:   "access [username] [USER|OPERATOR|ADMIN]",
	Short: "Set a user's access level",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.SetAccessLevel(args[0], args[1]); err != nil {
			log.Fatalf("Error updating access level: %v", err)
		}
		fmt.Printf("%s is now %s.\n", args[0], args[1])
	},
}

var usersPasswordCmd = &cobra.Command{
	Use:   "password [username] [new-password]",
	Short: "Reset a user's password",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.SetUserPassword(args[0], args[1]); err != nil {
			log.Fatalf("Error resetting password: %v", err)
		}
		fmt.Println("Password reset.")
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your own account",
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.DeleteAccount(); err != nil {
			log.Fatalf("Error deleting account: %v", err)
		}
		forgetToken()
		fmt.Println("Account deleted.")
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authUser, "username", "u", "", "Username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "Password")
		c.Flags().BoolVar(&authRemember, "remember", false, "Request a long-lived token")
		c.MarkFlagRequired("username")
		c.MarkFlagRequired("password")
	}

	usersCmd.AddCommand(usersAccessCmd, usersPasswordCmd)
	RootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, passwdCmd, usersCmd, deleteAccountCmd)
}
