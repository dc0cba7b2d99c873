package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"task-manager.com/task-manager/internal/constants"
	"task-manager.com/task-manager/internal/services"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the user directory",
}

var (
	userName            string
	userEmail           string
	userRole            string
	userProfileImageURL string
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a user to the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close(ctx)

		userService := services.NewUserService(st.users, st.tasks, noop.NewTracerProvider().Tracer(serviceName))
		user, err := userService.CreateUser(ctx, services.CreateUserInput{
			Name:            userName,
			Email:           userEmail,
			ProfileImageURL: userProfileImageURL,
			Role:            constants.UserRole(userRole),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.ID, user.Email)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&userRole, "role", string(constants.RoleMember), "admin or member")
	usersCreateCmd.Flags().StringVar(&userProfileImageURL, "profile-image-url", "", "avatar URL")
	_ = usersCreateCmd.MarkFlagRequired("name")
	_ = usersCreateCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersCreateCmd)
	rootCmd.AddCommand(usersCmd)
}
